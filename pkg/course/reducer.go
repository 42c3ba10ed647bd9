package course

import (
	"math"

	"github.com/chazu/mechtrainer/pkg/catalog"
)

// ReducerID identifies the single-stage gear reducer module.
const ReducerID = "REDUCER"

func reducerParts() []catalog.Part {
	bolt := func(id, name string, tool catalog.Tool, home, exploded [3]float64, scale, annotation float64) catalog.Part {
		return catalog.Part{
			ID: id, Name: name, Type: catalog.TypeBolt, RequiredTool: tool,
			Home:             transform(home, [3]float64{}, scale),
			ExplodedPosition: vec(exploded[0], exploded[1], exploded[2]),
			ExplodedRotation: vec(math.Pi/2, 0, 0),
			AnnotationHeight: annotation,
			Color:            map[catalog.Tool]string{catalog.ToolWrenchSmall: "#94A3B8", catalog.ToolWrenchLarge: "#CBD5E1"}[tool],
			Description:      "Fastening bolt.",
		}
	}

	return []catalog.Part{
		{
			ID: "housing", Name: "Reducer housing", Type: catalog.TypeHousing, RequiredTool: catalog.ToolNone,
			Home:             transform([3]float64{0, -1, 0}, [3]float64{}, 1),
			ExplodedPosition: vec(0, -1, 0),
			ExplodedRotation: vec(0, 0, 0),
			AnnotationHeight: -1,
			Color:            "#334155",
			Description:      "Base housing. Carries the shaft bearings and holds the oil bath.",
		},
		bolt("obs_bolt_1", "Inspection cover bolt M6", catalog.ToolWrenchSmall, [3]float64{-0.6, 2.15, 0.35}, [3]float64{-4.5, -1.9, 0}, 0.6, 5.5),
		bolt("obs_bolt_2", "Inspection cover bolt M6", catalog.ToolWrenchSmall, [3]float64{0.6, 2.15, 0.35}, [3]float64{-4.5, -1.9, 0.5}, 0.6, 5.5),
		bolt("obs_bolt_3", "Inspection cover bolt M6", catalog.ToolWrenchSmall, [3]float64{-0.6, 2.15, -0.35}, [3]float64{-4.5, -1.9, 1.0}, 0.6, 5.5),
		bolt("obs_bolt_4", "Inspection cover bolt M6", catalog.ToolWrenchSmall, [3]float64{0.6, 2.15, -0.35}, [3]float64{-4.5, -1.9, 1.5}, 0.6, 5.5),
		{
			ID: "obs_cover", Name: "Inspection cover", Type: catalog.TypeObsCover, RequiredTool: catalog.ToolHand,
			DependencyID:     "obs_bolt_4",
			Home:             transform([3]float64{0, 2.05, 0}, [3]float64{}, 1),
			ExplodedPosition: vec(-4.5, -1.9, -1.5),
			ExplodedRotation: vec(0, 0, 0),
			AnnotationHeight: 4.8,
			Color:            "#64748b",
			Description:      "Window for checking gear mesh and topping up oil.",
		},
		bolt("bolt_1", "Hex bolt M10", catalog.ToolWrenchLarge, [3]float64{-2.6, 0.2, 1.6}, [3]float64{4.5, -1.8, 0}, 1, 1.5),
		bolt("bolt_2", "Hex bolt M10", catalog.ToolWrenchLarge, [3]float64{2.6, 0.2, 1.6}, [3]float64{4.5, -1.8, 0.8}, 1, 1.5),
		bolt("bolt_3", "Hex bolt M10", catalog.ToolWrenchLarge, [3]float64{-2.6, 0.2, -1.6}, [3]float64{4.5, -1.8, 1.6}, 1, 1.5),
		bolt("bolt_4", "Hex bolt M10", catalog.ToolWrenchLarge, [3]float64{2.6, 0.2, -1.6}, [3]float64{4.5, -1.8, 2.4}, 1, 1.5),
		{
			ID: "housing_cover", Name: "Housing cover", Type: catalog.TypeCover, RequiredTool: catalog.ToolHand,
			DependencyID:     "bolt_4",
			Home:             transform([3]float64{0, 1, 0}, [3]float64{}, 1),
			ExplodedPosition: vec(0, 4, -3),
			ExplodedRotation: vec(-math.Pi/6, 0, 0),
			AnnotationHeight: 3.2,
			Color:            "#36383B",
			Description:      "Upper half of the split housing with the inspection opening.",
		},
		{
			ID: "input_shaft_assy", Name: "Input shaft assembly", Type: catalog.TypeShaft,
			RequiredTool: catalog.ToolPuller, AssemblyTool: catalog.ToolHammer, DependencyID: "housing_cover",
			Home:             transform([3]float64{-1, 0, 0}, [3]float64{}, 1),
			ExplodedPosition: vec(-3, 1.5, 3),
			ExplodedRotation: vec(0, 0, math.Pi/6),
			AnnotationHeight: 0.5,
			Color:            "#E2E8F0",
			Description:      "High speed input shaft with integral pinion.",
		},
		{
			ID: "output_gear_assy", Name: "Output shaft assembly", Type: catalog.TypeGear,
			RequiredTool: catalog.ToolPuller, AssemblyTool: catalog.ToolHammer, DependencyID: "input_shaft_assy",
			Home:             transform([3]float64{1, 0, 0}, [3]float64{}, 1),
			ExplodedPosition: vec(3, 1.5, 3),
			ExplodedRotation: vec(0, 0, -math.Pi/6),
			AnnotationHeight: 0.5,
			Color:            "#F1F5F9",
			Description:      "Low speed output shaft carrying the wheel gear.",
		},
	}
}

func reducerSteps() []catalog.Step {
	obs := []string{"obs_bolt_1", "obs_bolt_2", "obs_bolt_3", "obs_bolt_4"}
	bolts := []string{"bolt_1", "bolt_2", "bolt_3", "bolt_4"}
	shafts := []string{"input_shaft_assy", "output_gear_assy"}

	return []catalog.Step{
		{ID: 100, Title: "Reducer overview", Action: catalog.ModeInspect,
			Description: "A single-stage spur gear reducer trades input speed for output torque."},
		{ID: 101, Title: "Structure: housing", Action: catalog.ModeInspect, Targets: []string{"housing", "housing_cover"},
			Description: "The split housing is joined by dowels and bolts."},
		{ID: 102, Title: "Structure: drive train", Action: catalog.ModeInspect, Targets: shafts,
			Description: "The pinion shaft drives the wheel on the output shaft."},
		{ID: 1, Title: "Preparation", Action: catalog.ModeDisassemble,
			Description: "Drain the oil and clean the outside."},
		{ID: 2, Title: "Remove the inspection cover", Action: catalog.ModeDisassemble, Targets: append(append([]string{}, obs...), "obs_cover"),
			Description: "Remove the four M6 bolts, then lift the cover."},
		{ID: 3, Title: "Remove the joint bolts", Action: catalog.ModeDisassemble, Targets: bolts,
			Description: "Loosen the M10 hex bolts."},
		{ID: 4, Title: "Lift the housing cover", Action: catalog.ModeDisassemble, Targets: []string{"housing_cover"},
			Description: "Lift the cover straight up."},
		{ID: 5, Title: "Pull the shafts", Action: catalog.ModeDisassemble, Targets: shafts,
			Description: "Use the puller to withdraw both shaft assemblies."},
		{ID: 6, Title: "Install the shafts", Action: catalog.ModeAssemble, Targets: shafts,
			Description: "Seat both shaft assemblies, minding the gear mesh."},
		{ID: 7, Title: "Close the housing", Action: catalog.ModeAssemble, Targets: []string{"housing_cover"},
			Description: "Apply sealant and lower the cover onto the dowels."},
		{ID: 8, Title: "Tighten the joint bolts", Action: catalog.ModeAssemble, Targets: bolts,
			Description: "Tighten the M10 bolts crosswise."},
		{ID: 9, Title: "Refit the inspection cover", Action: catalog.ModeAssemble, Targets: append([]string{"obs_cover"}, obs...),
			Description: "Refit the cover and its bolts."},
	}
}

// Reducer returns the gear reducer course.
func Reducer() (*catalog.Course, error) {
	c, err := catalog.NewCourse(ReducerID, "Single-stage spur gear reducer", reducerParts(),
		[]catalog.Tool{catalog.ToolHand, catalog.ToolWrenchSmall, catalog.ToolWrenchLarge, catalog.ToolPuller, catalog.ToolHammer},
		reducerSteps())
	if err != nil {
		return nil, err
	}
	c.Subtitle = "Mechanical engineering fundamentals"
	c.Description = "Disassembly order, tool selection and safe handling of a split-housing industrial reducer."
	return c, nil
}
