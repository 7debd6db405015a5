package preview

import (
	"fmt"
	"image/color"
	"strings"
)

// KiCad classic theme
var layerColors = map[string]color.NRGBA{
	"F.Cu":      {R: 200, G: 52, B: 52, A: 255},
	"B.Cu":      {R: 77, G: 127, B: 196, A: 255},
	"F.SilkS":   {R: 242, G: 237, B: 161, A: 255},
	"B.SilkS":   {R: 232, G: 178, B: 167, A: 255},
	"F.Mask":    {R: 216, G: 100, B: 255, A: 102},
	"B.Mask":    {R: 2, G: 255, B: 238, A: 102},
	"F.Paste":   {R: 180, G: 160, B: 154, A: 230},
	"B.Paste":   {R: 0, G: 194, B: 194, A: 230},
	"F.Fab":     {R: 175, G: 175, B: 175, A: 255},
	"B.Fab":     {R: 88, G: 93, B: 132, A: 255},
	"F.CrtYd":   {R: 255, G: 38, B: 226, A: 255},
	"B.CrtYd":   {R: 38, G: 233, B: 255, A: 255},
	"F.Adhes":   {R: 132, G: 0, B: 132, A: 255},
	"B.Adhes":   {R: 0, G: 0, B: 132, A: 255},
	"Dwgs.User": {R: 194, G: 194, B: 194, A: 255},
	"Cmts.User": {R: 89, G: 148, B: 220, A: 255},
	"Eco1.User": {R: 180, G: 219, B: 210, A: 255},
	"Eco2.User": {R: 216, G: 200, B: 82, A: 255},
	"Edge.Cuts": {R: 208, G: 210, B: 205, A: 255},
}

var (
	colorBackground = color.NRGBA{R: 0, G: 16, B: 35, A: 255}
	colorDrill      = color.NRGBA{R: 227, G: 183, B: 46, A: 255}
	colorUnknown    = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	colorInnerCu    = color.NRGBA{R: 127, G: 200, B: 127, A: 255}
)

// layerColor returns the theme colour, falling back to the layer class
func layerColor(layer string) color.NRGBA {
	if c, ok := layerColors[layer]; ok {
		return c
	}
	switch {
	case strings.HasPrefix(layer, "In") && strings.HasSuffix(layer, ".Cu"):
		return colorInnerCu
	case strings.HasPrefix(layer, "User."):
		return layerColors["Dwgs.User"]
	}
	return colorUnknown
}

// layerClass names the kind of layer, used as class of the layer group
func layerClass(layer string) string {
	_, suffix, ok := strings.Cut(layer, ".")
	if !ok {
		return "other"
	}
	switch suffix {
	case "Cu":
		return "copper"
	case "SilkS":
		return "silkscreen"
	case "Fab":
		return "fabrication"
	case "CrtYd":
		return "courtyard"
	case "Mask":
		return "mask"
	case "Paste":
		return "paste"
	case "Cuts":
		return "edge"
	}
	return "user"
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.NRGBA) string {
	return fmt.Sprintf("%.2f", float64(c.A)/255)
}
