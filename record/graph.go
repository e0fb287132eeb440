package record

import "fmt"

// Graph is a fully materialized record graph: every instance reachable from
// decoding (or built by a caller) keyed by its stream id, plus the interned
// class schemas those instances reference.
//
// Graph is not safe for concurrent mutation — callers coordinate access
// themselves, the same way the format's single producer/consumer model
// assumes a single thread walks the stream at a time.
type Graph struct {
	RootID     int32
	HeaderID   int32
	Records    map[int32]Record
	ClassTypes []ClassType
}

// NewGraph returns an empty Graph ready for a decoder or a caller to
// populate.
func NewGraph(rootID, headerID int32) *Graph {
	return &Graph{
		RootID:   rootID,
		HeaderID: headerID,
		Records:  make(map[int32]Record),
	}
}

// ClassType dereferences c's ClassTypeID into the graph's interned schema
// list.
func (g *Graph) ClassType(c *Class) (*ClassType, error) {
	if c.ClassTypeID < 0 || c.ClassTypeID >= len(g.ClassTypes) {
		return nil, fmt.Errorf("%w: %d", ErrClassTypeOutOfRange, c.ClassTypeID)
	}
	return &g.ClassTypes[c.ClassTypeID], nil
}

// ClassMemberIndex returns the position of the member named name within c,
// per its ClassType's MemberNames layout.
func (g *Graph) ClassMemberIndex(c *Class, name string) (int, error) {
	ct, err := g.ClassType(c)
	if err != nil {
		return 0, err
	}
	for i, n := range ct.MemberNames {
		if n == name {
			return i, nil
		}
	}
	return 0, &MemberLookupError{ClassName: ct.Name, Member: name, Err: ErrMemberNotFound}
}

// ClassMember returns the value of c's member named name.
func (g *Graph) ClassMember(c *Class, name string) (Member, error) {
	i, err := g.ClassMemberIndex(c, name)
	if err != nil {
		return Member{}, err
	}
	return c.Members[i], nil
}

// ClassMemberDeref returns the record referenced by c's member named name.
// It is an error for that member not to be a Reference.
func (g *Graph) ClassMemberDeref(c *Class, name string) (Record, error) {
	m, err := g.ClassMember(c, name)
	if err != nil {
		return nil, err
	}
	id, err := m.AsReference()
	if err != nil {
		return nil, fmt.Errorf("record: member %q of class %d: %w", name, c.ClassTypeID, err)
	}
	r, ok := g.Records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	return r, nil
}

// NextID returns an id not yet used by any record in the graph, suitable
// for a caller inserting new records. There is no built-in allocator beyond
// this: callers computing several fresh ids in a row should increment from
// the returned value themselves (see app.ApplyUpgrades for the pattern).
func (g *Graph) NextID() int32 {
	var max int32
	first := true
	for id := range g.Records {
		if first || id > max {
			max = id
			first = false
		}
	}
	if first {
		return 1
	}
	return max + 1
}

// InsertRecord adds r to the graph under id, overwriting any existing
// record at that id.
func (g *Graph) InsertRecord(id int32, r Record) {
	g.Records[id] = r
}

// SetMember overwrites the member at index in c's member list.
func (g *Graph) SetMember(c *Class, index int, m Member) {
	c.Members[index] = m
}

// SetMemberByName overwrites c's member named name.
func (g *Graph) SetMemberByName(c *Class, name string, m Member) error {
	i, err := g.ClassMemberIndex(c, name)
	if err != nil {
		return err
	}
	c.Members[i] = m
	return nil
}

// AppendArrayElement appends m to a's element list, growing it by one.
func (g *Graph) AppendArrayElement(a *BinaryArray, m Member) {
	a.Elements = append(a.Elements, m)
}

// SetArrayElement overwrites the element at index in a's element list.
// It is the caller's responsibility to ensure index is in range; use
// AppendArrayElement to grow the array first if needed.
func (g *Graph) SetArrayElement(a *BinaryArray, index int, m Member) {
	a.Elements[index] = m
}
