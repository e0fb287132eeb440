// Package app implements the save-file mutation driver described as the
// codec's sole collaborator: it reaches into a decoded graph, looks up
// well-known class members by name, and appends new entries to a
// well-known inventory shape.
package app

import (
	"errors"
	"fmt"

	"github.com/arvek/bnrg/record"
)

// ErrNoTemplateEntry indicates the inventory's upgrade list has no existing
// entries to model newly added ones on — there is no class layout to copy
// defaults from.
var ErrNoTemplateEntry = errors.New("app: upgrade list has no existing entry to use as a template")

// UpgradeRequest names one upgrade that should be present in the save
// file's inventory, and whether a freshly added instance of it should be
// flagged as already unlocked.
type UpgradeRequest struct {
	Name             string
	StartingEligible bool
}

// UpgradeReport summarizes what ApplyUpgrades did.
type UpgradeReport struct {
	Added          []string
	AlreadyPresent []string
}

// ApplyUpgrades walks g's root → "inventory" → "upgrades" chain, compares
// the upgrade names already present in "_items" against requests, and
// appends one new entry/inner/name record triple per missing request,
// growing "_items" and incrementing "_size" to match. It implements the
// save-file mutation scenario: N appended upgrades means "_size" grows by
// N, "_items" gains N new references, and 3N new records are inserted with
// freshly allocated ids.
func ApplyUpgrades(g *record.Graph, requests []UpgradeRequest) (*UpgradeReport, error) {
	upgrades, items, sizeIndex, err := locateUpgradeList(g)
	if err != nil {
		return nil, err
	}

	size, err := g.ClassMember(upgrades, "_size")
	if err != nil {
		return nil, err
	}
	count, err := size.AsPrimitive()
	if err != nil {
		return nil, err
	}
	length, err := count.AsInt32()
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, length)
	var entryTemplate, innerTemplate *record.Class
	for i := int32(0); i < length && int(i) < len(items.Elements); i++ {
		entry, err := derefMember(g, items.Elements[i])
		if err != nil {
			return nil, err
		}
		entryClass := record.AsClass(entry)

		innerRec, err := g.ClassMemberDeref(entryClass, "upgrade")
		if err != nil {
			return nil, err
		}
		innerClass := record.AsClass(innerRec)

		nameRec, err := g.ClassMemberDeref(innerClass, "name")
		if err != nil {
			return nil, err
		}
		present[record.AsString(nameRec)] = true

		entryTemplate, innerTemplate = entryClass, innerClass
	}

	report := &UpgradeReport{}
	var toAdd []UpgradeRequest
	for _, req := range requests {
		if present[req.Name] {
			report.AlreadyPresent = append(report.AlreadyPresent, req.Name)
			continue
		}
		toAdd = append(toAdd, req)
	}
	if len(toAdd) == 0 {
		return report, nil
	}
	if entryTemplate == nil || innerTemplate == nil {
		return nil, ErrNoTemplateEntry
	}

	entryUpgradeIdx, err := g.ClassMemberIndex(entryTemplate, "upgrade")
	if err != nil {
		return nil, err
	}
	innerNameIdx, err := g.ClassMemberIndex(innerTemplate, "name")
	if err != nil {
		return nil, err
	}
	entryStartingIdx, hasStarting := -1, false
	if idx, err := g.ClassMemberIndex(entryTemplate, "isStarting"); err == nil {
		entryStartingIdx, hasStarting = idx, true
	}

	nextID := g.NextID()
	newRefs := make([]int32, 0, len(toAdd))
	for _, req := range toAdd {
		entryID, innerID, nameID := nextID, nextID+1, nextID+2

		innerMembers := append([]record.Member(nil), innerTemplate.Members...)
		innerMembers[innerNameIdx] = record.ReferenceMember(nameID)

		entryMembers := append([]record.Member(nil), entryTemplate.Members...)
		entryMembers[entryUpgradeIdx] = record.ReferenceMember(innerID)
		if hasStarting {
			entryMembers[entryStartingIdx] = record.PrimitiveMember(record.Bool(req.StartingEligible))
		}

		g.InsertRecord(nameID, &record.StringRecord{Value: req.Name})
		g.InsertRecord(innerID, &record.Class{ClassTypeID: innerTemplate.ClassTypeID, Members: innerMembers})
		g.InsertRecord(entryID, &record.Class{ClassTypeID: entryTemplate.ClassTypeID, Members: entryMembers})

		newRefs = append(newRefs, entryID)
		report.Added = append(report.Added, req.Name)
		nextID += 3
	}

	idx := int(length)
	for _, id := range newRefs {
		if idx < len(items.Elements) {
			g.SetArrayElement(items, idx, record.ReferenceMember(id))
		} else {
			g.AppendArrayElement(items, record.ReferenceMember(id))
		}
		idx++
	}

	g.SetMember(upgrades, sizeIndex, record.PrimitiveMember(record.Int32(length+int32(len(toAdd)))))

	return report, nil
}

// locateUpgradeList resolves root.inventory.upgrades and returns the
// upgrades Class itself, its "_items" BinaryArray, and the member index of
// "_size" (so the caller can overwrite it once the new length is known).
func locateUpgradeList(g *record.Graph) (*record.Class, *record.BinaryArray, int, error) {
	root, ok := g.Records[g.RootID]
	if !ok {
		return nil, nil, 0, fmt.Errorf("app: root record %d not found", g.RootID)
	}
	userSave := record.AsClass(root)

	inventoryRec, err := g.ClassMemberDeref(userSave, "inventory")
	if err != nil {
		return nil, nil, 0, err
	}
	inventory := record.AsClass(inventoryRec)

	upgradesRec, err := g.ClassMemberDeref(inventory, "upgrades")
	if err != nil {
		return nil, nil, 0, err
	}
	upgrades := record.AsClass(upgradesRec)

	sizeIndex, err := g.ClassMemberIndex(upgrades, "_size")
	if err != nil {
		return nil, nil, 0, err
	}

	itemsRec, err := g.ClassMemberDeref(upgrades, "_items")
	if err != nil {
		return nil, nil, 0, err
	}
	items := record.AsBinaryArray(itemsRec)

	return upgrades, items, sizeIndex, nil
}

func derefMember(g *record.Graph, m record.Member) (record.Record, error) {
	id, err := m.AsReference()
	if err != nil {
		return nil, err
	}
	r, ok := g.Records[id]
	if !ok {
		return nil, fmt.Errorf("app: reference to unknown record id %d", id)
	}
	return r, nil
}
