package app

import (
	"testing"

	"github.com/arvek/bnrg/record"
)

// buildSaveGraph constructs a minimal root → inventory → upgrades → _items
// chain with n existing upgrade entries, each with an "upgrade" class
// carrying a "name" string and an "isStarting" bool flag.
func buildSaveGraph(names ...string) *record.Graph {
	g := record.NewGraph(1, 0)

	g.ClassTypes = []record.ClassType{
		{ // 0: UserSave
			Name:        "UserSave",
			MemberNames: []string{"inventory"},
			MemberTypes: []record.MemberType{{Kind: record.MemberTypeObject}},
		},
		{ // 1: Inventory
			Name:        "Inventory",
			MemberNames: []string{"upgrades"},
			MemberTypes: []record.MemberType{{Kind: record.MemberTypeObject}},
		},
		{ // 2: UpgradeList
			Name:        "UpgradeList",
			MemberNames: []string{"_size", "_items"},
			MemberTypes: []record.MemberType{
				{Kind: record.MemberTypePrimitive, Prim: record.PrimitiveInt32},
				{Kind: record.MemberTypeObject},
			},
		},
		{ // 3: UpgradeEntry
			Name:        "UpgradeEntry",
			MemberNames: []string{"upgrade", "isStarting"},
			MemberTypes: []record.MemberType{
				{Kind: record.MemberTypeObject},
				{Kind: record.MemberTypePrimitive, Prim: record.PrimitiveBoolean},
			},
		},
		{ // 4: UpgradeInner
			Name:        "UpgradeInner",
			MemberNames: []string{"name"},
			MemberTypes: []record.MemberType{{Kind: record.MemberTypeObject}},
		},
	}

	nextID := int32(100)
	var itemRefs []record.Member
	for _, name := range names {
		nameID, innerID, entryID := nextID, nextID+1, nextID+2
		nextID += 3
		g.InsertRecord(nameID, &record.StringRecord{Value: name})
		g.InsertRecord(innerID, &record.Class{
			ClassTypeID: 4,
			Members:     []record.Member{record.ReferenceMember(nameID)},
		})
		g.InsertRecord(entryID, &record.Class{
			ClassTypeID: 3,
			Members: []record.Member{
				record.ReferenceMember(innerID),
				record.PrimitiveMember(record.Bool(false)),
			},
		})
		itemRefs = append(itemRefs, record.ReferenceMember(entryID))
	}

	itemsID := nextID
	nextID++
	g.InsertRecord(itemsID, &record.BinaryArray{
		ElementType: record.MemberType{Kind: record.MemberTypeObject},
		Elements:    itemRefs,
	})

	upgradesID := nextID
	nextID++
	g.InsertRecord(upgradesID, &record.Class{
		ClassTypeID: 2,
		Members: []record.Member{
			record.PrimitiveMember(record.Int32(int32(len(names)))),
			record.ReferenceMember(itemsID),
		},
	})

	inventoryID := nextID
	nextID++
	g.InsertRecord(inventoryID, &record.Class{
		ClassTypeID: 1,
		Members:     []record.Member{record.ReferenceMember(upgradesID)},
	})

	g.InsertRecord(1, &record.Class{
		ClassTypeID: 0,
		Members:     []record.Member{record.ReferenceMember(inventoryID)},
	})

	return g
}

func upgradeListAndItems(t *testing.T, g *record.Graph) (*record.Class, *record.BinaryArray) {
	t.Helper()
	upgrades, items, _, err := locateUpgradeList(g)
	if err != nil {
		t.Fatalf("locateUpgradeList: %v", err)
	}
	return upgrades, items
}

func TestApplyUpgradesAddsNewEntries(t *testing.T) {
	g := buildSaveGraph("double-jump", "dash")

	report, err := ApplyUpgrades(g, []UpgradeRequest{
		{Name: "double-jump"},
		{Name: "wall-climb", StartingEligible: true},
	})
	if err != nil {
		t.Fatalf("ApplyUpgrades: %v", err)
	}
	if len(report.AlreadyPresent) != 1 || report.AlreadyPresent[0] != "double-jump" {
		t.Fatalf("AlreadyPresent = %v, want [double-jump]", report.AlreadyPresent)
	}
	if len(report.Added) != 1 || report.Added[0] != "wall-climb" {
		t.Fatalf("Added = %v, want [wall-climb]", report.Added)
	}

	upgrades, items := upgradeListAndItems(t, g)
	size, err := g.ClassMember(upgrades, "_size")
	if err != nil {
		t.Fatalf("ClassMember(_size): %v", err)
	}
	prim, _ := size.AsPrimitive()
	n, _ := prim.AsInt32()
	if n != 3 {
		t.Fatalf("_size = %d, want 3", n)
	}
	if len(items.Elements) != 3 {
		t.Fatalf("len(_items) = %d, want 3", len(items.Elements))
	}

	lastEntry := record.AsClass(mustDeref(t, g, items.Elements[2]))
	innerRef, err := lastEntry.Members[0].AsReference()
	if err != nil {
		t.Fatalf("entry.upgrade is not a Reference: %v", err)
	}
	inner := record.AsClass(g.Records[innerRef])
	nameRec, err := g.ClassMemberDeref(inner, "name")
	if err != nil {
		t.Fatalf("ClassMemberDeref(name): %v", err)
	}
	if got := record.AsString(nameRec); got != "wall-climb" {
		t.Fatalf("new entry name = %q, want wall-climb", got)
	}

	startFlag, err := g.ClassMember(lastEntry, "isStarting")
	if err != nil {
		t.Fatalf("ClassMember(isStarting): %v", err)
	}
	flagPrim, _ := startFlag.AsPrimitive()
	b, _ := flagPrim.AsBool()
	if !b {
		t.Fatalf("isStarting = %v, want true", b)
	}
}

func TestApplyUpgradesAllAlreadyPresent(t *testing.T) {
	g := buildSaveGraph("double-jump")
	report, err := ApplyUpgrades(g, []UpgradeRequest{{Name: "double-jump"}})
	if err != nil {
		t.Fatalf("ApplyUpgrades: %v", err)
	}
	if len(report.Added) != 0 {
		t.Fatalf("Added = %v, want none", report.Added)
	}
	if len(report.AlreadyPresent) != 1 {
		t.Fatalf("AlreadyPresent = %v, want one entry", report.AlreadyPresent)
	}
}

func TestApplyUpgradesNoTemplateEntry(t *testing.T) {
	g := buildSaveGraph() // no existing entries at all
	_, err := ApplyUpgrades(g, []UpgradeRequest{{Name: "double-jump"}})
	if err != ErrNoTemplateEntry {
		t.Fatalf("ApplyUpgrades on an empty upgrade list = %v, want ErrNoTemplateEntry", err)
	}
}

func mustDeref(t *testing.T, g *record.Graph, m record.Member) record.Record {
	t.Helper()
	id, err := m.AsReference()
	if err != nil {
		t.Fatalf("AsReference: %v", err)
	}
	r, ok := g.Records[id]
	if !ok {
		t.Fatalf("no record with id %d", id)
	}
	return r
}
