package ifc

// Schema tags recognized by the store. The tags are opaque to the engine
// beyond the IFC2X3 product enumeration quirk.
const (
	SchemaIFC4   = "IFC4"
	SchemaIFC2X3 = "IFC2X3"
)

// Abstract supertype tags used by ByType queries.
const (
	TypeContext          = "IfcContext"
	TypeProduct          = "IfcProduct"
	TypeElement          = "IfcElement"
	TypeBuildingElement  = "IfcBuildingElement"
	TypeSpatialStructure = "IfcSpatialStructureElement"
)

// superTypes maps a concrete entity type to every abstract tag it
// satisfies. Types missing from the table only match themselves.
var superTypes = map[string][]string{
	"IfcProject": {TypeContext},

	"IfcSite":           {TypeSpatialStructure, TypeProduct},
	"IfcBuilding":       {TypeSpatialStructure, TypeProduct},
	"IfcBuildingStorey": {TypeSpatialStructure, TypeProduct},
	"IfcSpace":          {TypeSpatialStructure, TypeProduct},

	"IfcWall":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcWallStandardCase":     {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcSlab":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcBeam":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcColumn":               {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcWindow":               {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcDoor":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcRoof":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcStair":                {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcStairFlight":          {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcRamp":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcCovering":             {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcCurtainWall":          {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcPlate":                {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcMember":               {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcFooting":              {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcPile":                 {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcRailing":              {TypeBuildingElement, TypeElement, TypeProduct},
	"IfcBuildingElementProxy": {TypeBuildingElement, TypeElement, TypeProduct},

	"IfcFlowTerminal":                  {TypeElement, TypeProduct},
	"IfcFlowSegment":                   {TypeElement, TypeProduct},
	"IfcFurnishingElement":             {TypeElement, TypeProduct},
	"IfcOpeningElement":                {TypeElement, TypeProduct},
	"IfcGeometricRepresentationContext": nil,
}

// IsA reports whether typeTag equals or specializes the given tag.
func IsA(typeTag, tag string) bool {
	if typeTag == tag {
		return true
	}
	for _, super := range superTypes[typeTag] {
		if super == tag {
			return true
		}
	}
	return false
}

// IsElement reports whether the type tag denotes a physical element.
func IsElement(typeTag string) bool {
	return IsA(typeTag, TypeElement)
}
