package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

func TestSplitByStorey_PartitionsElements(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	ground := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	first := addStorey(doc, building, "storey-2", "First Floor", 3.0)

	wall1 := addElement(doc, "IfcWall", "wall-1", ground)
	wall2 := addElement(doc, "IfcWall", "wall-2", ground)
	slab := addElement(doc, "IfcSlab", "slab-1", first)

	eng := New(doc)
	results, err := eng.SplitByStorey(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Declaration order of the storeys is preserved.
	if results[0].StoreyName != "Ground Floor" || results[1].StoreyName != "First Floor" {
		t.Fatalf("unexpected order: %q, %q", results[0].StoreyName, results[1].StoreyName)
	}
	if results[0].StoreyGlobalID != "storey-1" || results[1].StoreyGlobalID != "storey-2" {
		t.Fatalf("unexpected storey ids: %q, %q", results[0].StoreyGlobalID, results[1].StoreyGlobalID)
	}

	groundDoc := results[0].Document
	if !groundDoc.Contains(wall1.ID) || !groundDoc.Contains(wall2.ID) {
		t.Fatalf("ground floor is missing its walls")
	}
	if groundDoc.Contains(slab.ID) {
		t.Fatalf("ground floor must not contain the first-floor slab")
	}

	firstDoc := results[1].Document
	if !firstDoc.Contains(slab.ID) {
		t.Fatalf("first floor is missing its slab")
	}
	if firstDoc.Contains(wall1.ID) || firstDoc.Contains(wall2.ID) {
		t.Fatalf("first floor must not contain ground-floor walls")
	}

	// Every element lands in exactly one partition.
	total := len(groundDoc.ByType(ifc.TypeElement)) + len(firstDoc.ByType(ifc.TypeElement))
	if total != 3 {
		t.Fatalf("expected 3 elements across partitions, got %d", total)
	}
}

func TestSplitByStorey_NoStoreys(t *testing.T) {
	doc, project := newTestDocument()
	addBuilding(doc, project, "building-1")

	eng := New(doc)
	if _, err := eng.SplitByStorey(context.Background()); !errors.Is(err, ErrNoStoreys) {
		t.Fatalf("expected ErrNoStoreys, got %v", err)
	}
}

func TestSplitByStorey_StripsForeignGeometry(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	ground := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	first := addStorey(doc, building, "storey-2", "First Floor", 3.0)

	geo1 := doc.Add(ifc.NewEntity("IfcProductDefinitionShape"))
	geo2 := doc.Add(ifc.NewEntity("IfcProductDefinitionShape"))

	wall1 := addElement(doc, "IfcWall", "wall-1", ground)
	wall1.Set("Representation", ifc.Ref(geo1.ID))
	wall2 := addElement(doc, "IfcWall", "wall-2", first)
	wall2.Set("Representation", ifc.Ref(geo2.ID))

	eng := New(doc)
	results, err := eng.SplitByStorey(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groundDoc := results[0].Document
	if !groundDoc.Contains(geo1.ID) {
		t.Fatalf("ground floor lost the geometry of its own wall")
	}
	if groundDoc.Contains(geo2.ID) {
		t.Fatalf("ground floor must not carry geometry of a foreign wall")
	}
}

func TestSplitByStorey_KeepsDefiningSets(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	ground := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", ground)

	pset := addPset(doc, wall, "Pset_WallCommon", map[string]ifc.Value{
		"LoadBearing": ifc.Bool(true),
	})
	steel := addMaterial(doc, "Steel")
	doc.Relate(ifc.RelAssociatesMaterial, steel.ID, wall.ID)

	eng := New(doc)
	results, err := eng.SplitByStorey(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	sub := results[0].Document
	if !sub.Contains(pset.ID) {
		t.Fatalf("property set was not carried into the partition")
	}
	if !sub.Contains(steel.ID) {
		t.Fatalf("material was not carried into the partition")
	}

	// The partition must be self-contained: resolving against it alone
	// still finds the wall's properties and materials.
	subEng := New(sub)
	subWall := sub.Entity(wall.ID)
	if subWall == nil {
		t.Fatalf("wall missing from partition")
	}
	props := subEng.CommonProperties(subWall)
	if v, ok := props["loadBearing"].(bool); !ok || !v {
		t.Fatalf("expected loadBearing true in partition, got %v", props["loadBearing"])
	}
	if names := subEng.Materials(subWall); len(names) != 1 || names[0] != "Steel" {
		t.Fatalf("expected Steel in partition, got %v", names)
	}
}

func TestSplitByStorey_UnnamedStorey(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	addStorey(doc, building, "storey-1", "", 0.0)

	eng := New(doc)
	results, err := eng.SplitByStorey(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].StoreyName != "Unnamed" {
		t.Fatalf("expected Unnamed storey, got %+v", results)
	}
}
