package engine

import (
	"testing"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

func buildExtractionDoc() (*ifc.Document, *Engine) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)

	for i, tc := range []struct {
		class string
		gid   string
	}{
		{"IfcWall", "wall-1"},
		{"IfcWall", "wall-2"},
		{"IfcSlab", "slab-1"},
	} {
		el := addElement(doc, tc.class, tc.gid, storey)
		addQuantitySet(doc, el, volumeQuantity("NetVolume", float64(i+1)))
		addPset(doc, el, "Pset_"+tc.class[3:]+"Common", map[string]ifc.Value{
			"LoadBearing": ifc.Bool(true),
		})
	}
	return doc, New(doc)
}

func TestExtractElements_FullRecords(t *testing.T) {
	_, eng := buildExtractionDoc()

	result := eng.ExtractElements(ExtractOptions{})
	if result.TotalElements != 3 {
		t.Fatalf("expected 3 elements, got %d", result.TotalElements)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}

	first := result.Records[0]
	if first.ID != "wall-1" || first.IfcClass != "IfcWall" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Properties == nil {
		t.Fatalf("expected properties in record")
	}
	if v, ok := first.Properties["loadBearing"].(bool); !ok || !v {
		t.Fatalf("expected loadBearing true, got %v", first.Properties["loadBearing"])
	}
	if first.Quantities == nil || first.Quantities.Volume == nil {
		t.Fatalf("expected volume quantities in record")
	}
	if first.Quantities.Volume.Net == nil || !almostEqual(*first.Quantities.Volume.Net, 1.0) {
		t.Fatalf("unexpected net volume: %v", float64Value(first.Quantities.Volume.Net))
	}
}

func TestExtractElements_ClassFilter(t *testing.T) {
	_, eng := buildExtractionDoc()

	result := eng.ExtractElements(ExtractOptions{Classes: []string{"IfcSlab"}})
	if result.TotalElements != 1 {
		t.Fatalf("expected 1 slab, got %d", result.TotalElements)
	}
	if len(result.Records) != 1 || result.Records[0].ID != "slab-1" {
		t.Fatalf("unexpected filtered records: %+v", result.Records)
	}
}

func TestExtractElements_Pagination(t *testing.T) {
	_, eng := buildExtractionDoc()

	page1 := eng.ExtractElements(ExtractOptions{Limit: 2})
	if page1.TotalElements != 3 || len(page1.Records) != 2 {
		t.Fatalf("unexpected first page: total %d, records %d", page1.TotalElements, len(page1.Records))
	}
	page2 := eng.ExtractElements(ExtractOptions{Offset: 2, Limit: 2})
	if len(page2.Records) != 1 || page2.Records[0].ID != "slab-1" {
		t.Fatalf("unexpected second page: %+v", page2.Records)
	}
	empty := eng.ExtractElements(ExtractOptions{Offset: 10, Limit: 2})
	if len(empty.Records) != 0 {
		t.Fatalf("expected empty page, got %d records", len(empty.Records))
	}
}

func TestExtractElements_ExcludeFlags(t *testing.T) {
	_, eng := buildExtractionDoc()

	result := eng.ExtractElements(ExtractOptions{
		ExcludeProperties: true,
		ExcludeQuantities: true,
		ExcludeMaterials:  true,
		Limit:             1,
	})
	record := result.Records[0]
	if record.Properties != nil {
		t.Fatalf("expected no properties, got %v", record.Properties)
	}
	if record.Quantities != nil {
		t.Fatalf("expected no quantities, got %v", record.Quantities)
	}
	if record.Materials != nil || record.MaterialVolumes != nil {
		t.Fatalf("expected no materials, got %v", record.Materials)
	}
}

func TestExtractElements_MaterialVolumesAndWarnings(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)

	good := addElement(doc, "IfcWall", "wall-good", storey)
	addQuantitySet(doc, good, volumeQuantity("NetVolume", 10.0))
	insulation := addMaterial(doc, "Insulation")
	concrete := addMaterial(doc, "Concrete")
	addLayerSet(doc, good,
		layerOf(insulation, 0.02),
		layerOf(concrete, 0.18),
	)

	bad := addElement(doc, "IfcWall", "wall-bad", storey)
	addQuantitySet(doc, bad, volumeQuantity("NetVolume", 5.0))
	air := addMaterial(doc, "Air")
	addLayerSet(doc, bad, layerOf(air, 0.0))

	eng := New(doc)
	result := eng.ExtractElements(ExtractOptions{IncludeWidths: true})
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}

	goodRecord := result.Records[0]
	if len(goodRecord.MaterialVolumes) != 2 {
		t.Fatalf("expected 2 material volumes, got %v", goodRecord.MaterialVolumes)
	}
	ins := goodRecord.MaterialVolumes["Insulation"]
	if !almostEqual(ins.Fraction, 0.1) || !almostEqual(ins.Volume, 1.0) {
		t.Fatalf("unexpected insulation record: %+v", ins)
	}
	if ins.Width == nil || !almostEqual(*ins.Width, 0.02) {
		t.Fatalf("expected width 0.02, got %v", float64Value(ins.Width))
	}

	badRecord := result.Records[1]
	if badRecord.MaterialVolumes != nil {
		t.Fatalf("expected suppressed breakdown, got %v", badRecord.MaterialVolumes)
	}
	if len(badRecord.Materials) != 1 || badRecord.Materials[0] != "Air" {
		t.Fatalf("expected material names to survive, got %v", badRecord.Materials)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].ElementID != "wall-bad" {
		t.Fatalf("expected warning for wall-bad, got %+v", result.Warnings)
	}
}

func TestExtractElements_Rounding(t *testing.T) {
	doc, project := newTestDocument()
	building := addBuilding(doc, project, "building-1")
	storey := addStorey(doc, building, "storey-1", "Ground Floor", 0.0)
	wall := addElement(doc, "IfcWall", "wall-1", storey)

	addQuantitySet(doc, wall,
		volumeQuantity("NetVolume", 1.0/3.0),
		lengthQuantity("Width", 0.123456),
	)

	eng := New(doc)
	result := eng.ExtractElements(ExtractOptions{})
	record := result.Records[0]

	if net := record.Quantities.Volume.Net; net == nil || *net != 0.33333 {
		t.Fatalf("expected net volume rounded to 5 digits, got %v", float64Value(net))
	}
	if width := record.Quantities.Dimensions.Width; width == nil || *width != 0.123 {
		t.Fatalf("expected width rounded to 3 digits, got %v", float64Value(width))
	}
}

func TestModelInfo(t *testing.T) {
	_, eng := buildExtractionDoc()

	info := eng.ModelInfo()
	if info.Schema != ifc.SchemaIFC4 {
		t.Fatalf("unexpected schema %q", info.Schema)
	}
	if info.Project == nil || info.Project.Name != "Test Project" {
		t.Fatalf("unexpected project: %+v", info.Project)
	}
	if info.StoreyCount != 1 {
		t.Fatalf("expected 1 storey, got %d", info.StoreyCount)
	}
	if info.TotalElements != 3 {
		t.Fatalf("expected 3 elements, got %d", info.TotalElements)
	}
	if info.ElementCounts["IfcWall"] != 2 || info.ElementCounts["IfcSlab"] != 1 {
		t.Fatalf("unexpected counts: %v", info.ElementCounts)
	}
	if info.Units["LENGTHUNIT"] != "METRE" {
		t.Fatalf("unexpected length unit: %q", info.Units["LENGTHUNIT"])
	}
	if info.Header["name"] != "test-model" {
		t.Fatalf("header not carried through, got %q", info.Header["name"])
	}
}

func TestElementsInfo(t *testing.T) {
	_, eng := buildExtractionDoc()

	total, infos := eng.ElementsInfo(nil, 0, 2)
	if total < 3 {
		t.Fatalf("expected at least 3 products, got %d", total)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}

	total, infos = eng.ElementsInfo([]string{"IfcWall"}, 0, 0)
	if total != 2 || len(infos) != 2 {
		t.Fatalf("expected 2 walls, got total %d len %d", total, len(infos))
	}
	if infos[0]["GlobalId"] != "wall-1" || infos[0]["ifc_class"] != "IfcWall" {
		t.Fatalf("unexpected first wall info: %v", infos[0])
	}
}
