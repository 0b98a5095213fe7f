package entities

// CropType describes a plantable crop.
type CropType struct {
	Name      string `json:"name" yaml:"name"`
	Icon      string `json:"icon" yaml:"icon"`
	WaterNeed int    `json:"water_need" yaml:"water_need"` // baseline water need [%]
}

const (
	CropTomato   = "Tomate"
	CropLettuce  = "Lechuga"
	CropCarrot   = "Zanahoria"
	CropPepper   = "Pimiento"
	CropCorn     = "Maíz"
	CropBroccoli = "Brócoli"
	CropCucumber = "Pepino"
	CropOnion    = "Cebolla"

	// DefaultCropIcon is shown for crops missing from the table.
	DefaultCropIcon = "🌱"
)

// Crops is the fixed crop table used by the grid generator.
var Crops = []CropType{
	{Name: CropTomato, Icon: "🍅", WaterNeed: 70},
	{Name: CropLettuce, Icon: "🥬", WaterNeed: 60},
	{Name: CropCarrot, Icon: "🥕", WaterNeed: 50},
	{Name: CropPepper, Icon: "🌶️", WaterNeed: 65},
	{Name: CropCorn, Icon: "🌽", WaterNeed: 75},
	{Name: CropBroccoli, Icon: "🥦", WaterNeed: 55},
	{Name: CropCucumber, Icon: "🥒", WaterNeed: 80},
	{Name: CropOnion, Icon: "🧅", WaterNeed: 45},
}

// CropIcon returns the icon of the named crop.
func CropIcon(name string) string {
	for _, c := range Crops {
		if c.Name == name {
			return c.Icon
		}
	}
	return DefaultCropIcon
}
