package ecs

import "strconv"

// Entity is a generational handle: the low 32 bits hold the slot id, the
// high 32 bits the generation. Components store the raw uint64 when they
// need to reference another entity.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}

// entityStore tracks slot generations and free ids.
type entityStore struct {
	nextID entityID
	gens   []generation
	alive  []bool
	free   []entityID
}

func (s *entityStore) create() Entity {
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.nextID++
		id = s.nextID
		s.gens = append(s.gens, 0)
		s.alive = append(s.alive, false)
	}
	s.alive[id-1] = true
	return makeEntity(id, s.gens[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(s.gens) {
		return false
	}
	if !s.alive[id-1] || s.gens[id-1] != e.generation() {
		return false
	}
	s.gens[id-1]++
	s.alive[id-1] = false
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(s.gens) {
		return false
	}
	return s.alive[id-1] && s.gens[id-1] == e.generation()
}

// handleFor rebuilds the live handle for a slot id, if the slot is alive.
func (s *entityStore) handleFor(id int) (Entity, bool) {
	if id <= 0 || id > len(s.gens) || !s.alive[id-1] {
		return 0, false
	}
	return makeEntity(entityID(id), s.gens[id-1]), true
}
