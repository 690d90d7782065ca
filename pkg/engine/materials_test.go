package engine

import (
	"testing"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

func TestMaterialFractions_LayeredWall(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	addQuantitySet(doc, wall, volumeQuantity("NetVolume", 10.0))

	insulation := addMaterial(doc, "Insulation")
	concrete := addMaterial(doc, "Concrete")
	addLayerSet(doc, wall,
		layerOf(insulation, 0.02),
		layerOf(concrete, 0.18),
	)

	eng := New(doc)
	breakdown := eng.MaterialFractions(wall)
	if breakdown.Warning != nil {
		t.Fatalf("unexpected warning: %+v", breakdown.Warning)
	}
	if len(breakdown.Keys) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(breakdown.Keys))
	}
	if breakdown.Keys[0] != "Insulation" || breakdown.Keys[1] != "Concrete" {
		t.Fatalf("unexpected key order: %v", breakdown.Keys)
	}

	ins := breakdown.Fractions["Insulation"]
	if !almostEqual(ins.Fraction, 0.1) || !almostEqual(ins.Volume, 1.0) {
		t.Fatalf("insulation share: fraction %v volume %v", ins.Fraction, ins.Volume)
	}
	con := breakdown.Fractions["Concrete"]
	if !almostEqual(con.Fraction, 0.9) || !almostEqual(con.Volume, 9.0) {
		t.Fatalf("concrete share: fraction %v volume %v", con.Fraction, con.Volume)
	}
}

func TestMaterialFractions_SingleMaterial(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	beam := addElement(doc, "IfcBeam", "beam-1", storey)

	addQuantitySet(doc, beam,
		volumeQuantity("NetVolume", 2.5),
		lengthQuantity("Width", 0.3),
	)
	steel := addMaterial(doc, "Steel")
	doc.Relate(ifc.RelAssociatesMaterial, steel.ID, beam.ID)

	eng := New(doc)
	breakdown := eng.MaterialFractions(beam)
	if breakdown.Warning != nil {
		t.Fatalf("unexpected warning: %+v", breakdown.Warning)
	}
	if len(breakdown.Keys) != 1 || breakdown.Keys[0] != "Steel" {
		t.Fatalf("unexpected keys: %v", breakdown.Keys)
	}
	f := breakdown.Fractions["Steel"]
	if !almostEqual(f.Fraction, 1.0) || !almostEqual(f.Volume, 2.5) {
		t.Fatalf("steel share: fraction %v volume %v", f.Fraction, f.Volume)
	}
	if f.Width == nil || !almostEqual(*f.Width, 0.3) {
		t.Fatalf("expected width 0.3 from dimensions, got %v", float64Value(f.Width))
	}
}

func TestMaterialFractions_LayerSetUsage(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	addQuantitySet(doc, wall, volumeQuantity("GrossVolume", 4.0))

	brick := addMaterial(doc, "Brick")
	layerSet := ifc.NewEntity("IfcMaterialLayerSet").
		Set("MaterialLayers", ifc.List(layerOf(brick, 0.1)))
	doc.Add(layerSet)

	usage := ifc.NewEntity("IfcMaterialLayerSetUsage").
		Set("ForLayerSet", ifc.Ref(layerSet.ID))
	doc.Add(usage)
	doc.Relate(ifc.RelAssociatesMaterial, usage.ID, wall.ID)

	eng := New(doc)
	breakdown := eng.MaterialFractions(wall)
	if breakdown.Warning != nil {
		t.Fatalf("unexpected warning: %+v", breakdown.Warning)
	}
	f, ok := breakdown.Fractions["Brick"]
	if !ok {
		t.Fatalf("expected Brick in breakdown, got keys %v", breakdown.Keys)
	}
	// Gross volume is the fallback when net is missing.
	if !almostEqual(f.Volume, 4.0) {
		t.Fatalf("expected volume 4.0, got %v", f.Volume)
	}
}

func TestMaterialFractions_DuplicateNamesGetSuffixedKeys(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	addQuantitySet(doc, wall, volumeQuantity("NetVolume", 3.0))

	gypsum := addMaterial(doc, "Gypsum")
	addLayerSet(doc, wall,
		layerOf(gypsum, 0.0125),
		layerOf(gypsum, 0.0125),
		layerOf(gypsum, 0.025),
	)

	eng := New(doc)
	breakdown := eng.MaterialFractions(wall)
	if breakdown.Warning != nil {
		t.Fatalf("unexpected warning: %+v", breakdown.Warning)
	}

	want := []string{"Gypsum", "Gypsum (2)", "Gypsum (3)"}
	if len(breakdown.Keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), breakdown.Keys)
	}
	for i, key := range want {
		if breakdown.Keys[i] != key {
			t.Fatalf("key %d = %q, want %q", i, breakdown.Keys[i], key)
		}
	}
	if f := breakdown.Fractions["Gypsum (3)"]; !almostEqual(f.Fraction, 0.5) {
		t.Fatalf("expected thick layer fraction 0.5, got %v", f.Fraction)
	}
}

func TestMaterialFractions_SumViolationSuppressesBreakdown(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	addQuantitySet(doc, wall, volumeQuantity("NetVolume", 5.0))

	// Zero thicknesses make every fraction zero, so the sum cannot
	// reach 1.0 and the element is reported instead of split.
	air := addMaterial(doc, "Air")
	membrane := addMaterial(doc, "Membrane")
	addLayerSet(doc, wall,
		layerOf(air, 0.0),
		layerOf(membrane, 0.0),
	)

	eng := New(doc)
	breakdown := eng.MaterialFractions(wall)
	if breakdown.Warning == nil {
		t.Fatalf("expected a fraction warning")
	}
	if breakdown.Keys != nil || breakdown.Fractions != nil {
		t.Fatalf("expected suppressed breakdown, got keys %v", breakdown.Keys)
	}
	if breakdown.Warning.ElementID != "wall-1" || breakdown.Warning.ElementType != "IfcWall" {
		t.Fatalf("unexpected warning target: %+v", breakdown.Warning)
	}
	if !almostEqual(breakdown.Warning.TotalFraction, 0.0) {
		t.Fatalf("expected total fraction 0.0, got %v", breakdown.Warning.TotalFraction)
	}

	// The element still resolves materials by name.
	names := eng.Materials(wall)
	if len(names) != 2 || names[0] != "Air" || names[1] != "Membrane" {
		t.Fatalf("unexpected material names: %v", names)
	}
}

func TestMaterialFractions_NoAssignment(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	eng := New(doc)
	breakdown := eng.MaterialFractions(wall)
	if breakdown.Keys != nil || breakdown.Fractions != nil || breakdown.Warning != nil {
		t.Fatalf("expected empty breakdown, got %+v", breakdown)
	}
	if names := eng.Materials(wall); names != nil {
		t.Fatalf("expected no materials, got %v", names)
	}
}

func TestMaterials_ConstituentSetNames(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	concrete := addMaterial(doc, "Concrete")
	rebar := addMaterial(doc, "Rebar")
	addConstituentSet(doc, wall,
		constituentOf("Core", concrete),
		constituentOf("Reinforcement", rebar),
	)

	eng := New(doc)
	names := eng.Materials(wall)
	if len(names) != 2 || names[0] != "Concrete" || names[1] != "Rebar" {
		t.Fatalf("unexpected constituent materials: %v", names)
	}
}
