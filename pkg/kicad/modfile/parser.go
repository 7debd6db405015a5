package modfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
)

// ParseFile reads and parses a footprint file
func ParseFile(filename string) (*Footprint, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// ParseString parses the content of a footprint file
func ParseString(s string) (*Footprint, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads and parses a footprint from an io.Reader
func Parse(r io.Reader) (*Footprint, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}
	if len(sexps) > 1 {
		return nil, fmt.Errorf("expected a single footprint, found %d expressions", len(sexps))
	}

	root := sexps[0]
	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "footprint" {
		return nil, fmt.Errorf("not a KiCad footprint file: expected 'footprint', got '%s'", rootName)
	}

	fp, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	for i, item := range sexp.GetListItems(root) {
		if item.IsLeaf() {
			continue
		}
		if err := fp.parseElement(item); err != nil {
			return nil, fmt.Errorf("failed to parse element %d of %s: %w", i+1, fp.Name, err)
		}
	}
	return fp, nil
}

// parseHeader extracts name, version and generator
// Expected format: (footprint "name" (version 20241229) (generator "x") ...)
func parseHeader(root kicadsexp.Sexp) (*Footprint, error) {
	name, err := sexp.GetString(root, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	fp := &Footprint{Name: name, Generator: "unknown"}

	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return nil, fmt.Errorf("missing required 'version' field")
	}
	if fp.Version, err = sexp.GetInt(versionNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse version: %w", err)
	}
	if fp.Version < MinSupportedVersion {
		return nil, fmt.Errorf("unsupported footprint version: %d (minimum required: %d / KiCad 6.0)", fp.Version, MinSupportedVersion)
	}

	if genNode, found := sexp.FindNode(root, "generator"); found {
		if gen, err := sexp.GetString(genNode, 1); err == nil {
			fp.Generator = gen
		}
	}
	if verNode, found := sexp.FindNode(root, "generator_version"); found {
		fp.GeneratorVersion, _ = sexp.GetString(verNode, 1)
	}
	return fp, nil
}

func (fp *Footprint) parseElement(node kicadsexp.Sexp) error {
	name, err := sexp.GetNodeName(node)
	if err != nil {
		return err
	}

	switch name {
	case "version", "generator", "generator_version":
	case "layer":
		fp.Layer, err = sexp.GetString(node, 1)
	case "descr":
		fp.Description, err = sexp.GetString(node, 1)
	case "tags":
		var tags string
		tags, err = sexp.GetString(node, 1)
		fp.Tags = strings.Fields(tags)
	case "attr":
		fp.Attributes, err = sexp.GetStrings(node)
	case "embedded_fonts":
		fp.EmbeddedFonts, err = sexp.GetBool(node, 1)
	case "property":
		var prop sexp.Property
		if prop, err = sexp.GetProperty(node); err == nil {
			fp.Properties = append(fp.Properties, prop)
		}
	case "fp_text":
		var text Text
		if text, err = parseText(node); err == nil {
			fp.Texts = append(fp.Texts, text)
		}
	case "fp_line":
		var line Line
		if line, err = parseLine(node); err == nil {
			fp.Lines = append(fp.Lines, line)
		}
	case "fp_arc":
		var arc Arc
		if arc, err = parseArc(node); err == nil {
			fp.Arcs = append(fp.Arcs, arc)
		}
	case "fp_circle":
		var circle Circle
		if circle, err = parseCircle(node); err == nil {
			fp.Circles = append(fp.Circles, circle)
		}
	case "fp_rect":
		var rect Rect
		if rect, err = parseRect(node); err == nil {
			fp.Rects = append(fp.Rects, rect)
		}
	case "fp_poly":
		var poly Poly
		if poly, err = parsePoly(node); err == nil {
			fp.Polys = append(fp.Polys, poly)
		}
	case "pad":
		var pad Pad
		if pad, err = parsePad(node); err == nil {
			fp.Pads = append(fp.Pads, pad)
		}
	case "group":
		var group Group
		if group, err = parseGroup(node); err == nil {
			fp.Groups = append(fp.Groups, group)
		}
	case "model":
		var model Model
		if model, err = parseModel(node); err == nil {
			fp.Models = append(fp.Models, model)
		}
	default:
		// Margins, zone settings and newer nodes are not needed for checks
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// parsePad extracts a pad definition
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) ...)
func parsePad(node kicadsexp.Sexp) (Pad, error) {
	pad := Pad{}
	var err error

	if pad.Number, err = sexp.GetString(node, 1); err != nil {
		return pad, fmt.Errorf("failed to parse pad number: %w", err)
	}
	if pad.Type, err = sexp.GetString(node, 2); err != nil {
		return pad, fmt.Errorf("failed to parse pad type: %w", err)
	}
	if pad.Shape, err = sexp.GetString(node, 3); err != nil {
		return pad, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return pad, fmt.Errorf("missing required 'at' position")
	}
	if pad.Position, err = sexp.GetPosition(atNode); err != nil {
		return pad, fmt.Errorf("failed to parse pad position: %w", err)
	}

	if pad.Size, err = sexp.GetChildXY(node, "size"); err != nil {
		return pad, fmt.Errorf("failed to parse pad size: %w", err)
	}

	// Drill is (drill d) or (drill oval x y), optionally with (offset x y)
	if drillNode, found := sexp.FindNode(node, "drill"); found {
		if sexp.HasSymbol(drillNode, "oval") {
			x, errX := sexp.GetFloat(drillNode, 2)
			y, errY := sexp.GetFloat(drillNode, 3)
			if errX != nil || errY != nil {
				return pad, fmt.Errorf("failed to parse oval drill of pad %q", pad.Number)
			}
			pad.Drill.X, pad.Drill.Y = x, y
		} else {
			d, err := sexp.GetFloat(drillNode, 1)
			if err != nil {
				return pad, fmt.Errorf("failed to parse drill of pad %q: %w", pad.Number, err)
			}
			pad.Drill.X, pad.Drill.Y = d, d
		}
		if offsetNode, found := sexp.FindNode(drillNode, "offset"); found {
			if pad.DrillOffset, err = sexp.GetXY(offsetNode); err != nil {
				return pad, fmt.Errorf("failed to parse drill offset: %w", err)
			}
		}
	}

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return pad, fmt.Errorf("missing required 'layers' field")
	}
	if pad.Layers, err = sexp.GetStrings(layersNode); err != nil {
		return pad, fmt.Errorf("failed to parse pad layers: %w", err)
	}

	if propNode, found := sexp.FindNode(node, "property"); found {
		pad.Property, _ = sexp.GetString(propNode, 1)
	}
	if ratioNode, found := sexp.FindNode(node, "roundrect_rratio"); found {
		pad.RRatio, _ = sexp.GetFloat(ratioNode, 1)
	}
	if chamferNode, found := sexp.FindNode(node, "chamfer"); found {
		pad.Chamfer, _ = sexp.GetStrings(chamferNode)
	}
	if primNode, found := sexp.FindNode(node, "primitives"); found {
		pad.Primitives = len(sexp.GetListItems(primNode))
	}
	pad.UUID = uuidOf(node)

	return pad, nil
}

func parseText(node kicadsexp.Sexp) (Text, error) {
	text := Text{}
	var err error
	if text.Kind, err = sexp.GetString(node, 1); err != nil {
		return text, fmt.Errorf("failed to parse text kind: %w", err)
	}
	if text.Text, err = sexp.GetString(node, 2); err != nil {
		return text, fmt.Errorf("failed to parse text: %w", err)
	}
	if atNode, ok := sexp.FindNode(node, "at"); ok {
		if text.Position, err = sexp.GetPosition(atNode); err != nil {
			return text, err
		}
	}
	text.Layer = layerOf(node)
	if hideNode, ok := sexp.FindNode(node, "hide"); ok {
		text.Hide, _ = sexp.GetBool(hideNode, 1)
	}
	if effectsNode, ok := sexp.FindNode(node, "effects"); ok {
		if text.Effects, err = sexp.GetEffects(effectsNode); err != nil {
			return text, err
		}
	}
	return text, nil
}

func parseModel(node kicadsexp.Sexp) (Model, error) {
	model := Model{Scale: [3]float64{1, 1, 1}}
	var err error
	if model.Path, err = sexp.GetString(node, 1); err != nil {
		return model, fmt.Errorf("failed to parse model path: %w", err)
	}
	for _, f := range []struct {
		key string
		dst *[3]float64
	}{
		{"offset", &model.Offset},
		{"scale", &model.Scale},
		{"rotate", &model.Rotate},
	} {
		if n, ok := sexp.FindNode(node, f.key); ok {
			if *f.dst, err = sexp.GetXYZ(n); err != nil {
				return model, fmt.Errorf("failed to parse model %s: %w", f.key, err)
			}
		}
	}
	return model, nil
}

func parseGroup(node kicadsexp.Sexp) (Group, error) {
	group := Group{UUID: uuidOf(node)}
	var err error
	if group.Name, err = sexp.GetString(node, 1); err != nil {
		return group, fmt.Errorf("failed to parse group name: %w", err)
	}
	if membersNode, ok := sexp.FindNode(node, "members"); ok {
		if group.Members, err = sexp.GetStrings(membersNode); err != nil {
			return group, fmt.Errorf("failed to parse group members: %w", err)
		}
	}
	return group, nil
}

func layerOf(node kicadsexp.Sexp) string {
	if layerNode, ok := sexp.FindNode(node, "layer"); ok {
		layer, _ := sexp.GetString(layerNode, 1)
		return layer
	}
	return ""
}

func uuidOf(node kicadsexp.Sexp) string {
	if uuidNode, ok := sexp.FindNode(node, "uuid"); ok {
		id, _ := sexp.GetString(uuidNode, 1)
		return id
	}
	return ""
}
