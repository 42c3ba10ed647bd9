package course

import (
	"math"

	"github.com/chazu/mechtrainer/pkg/catalog"
)

// EngineID identifies the turbofan engine module.
const EngineID = "ENGINE"

// engineStage describes one coaxial module of the engine. Every stage sits
// on the engine axis and is rolled a quarter turn so its local Y axis runs
// along the flow direction.
type engineStage struct {
	id, name   string
	typ        catalog.PartType
	tool       catalog.Tool
	dep        string
	x          float64
	exploded   [3]float64
	explodedR  [3]float64
	annotation [3]float64
	height     float64
	color      string
	desc       string
}

func (s engineStage) part() catalog.Part {
	return catalog.Part{
		ID: s.id, Name: s.name, Type: s.typ, RequiredTool: s.tool, DependencyID: s.dep,
		Home:             transform([3]float64{s.x, 0.5, 0}, [3]float64{0, 0, -math.Pi / 2}, 1),
		ExplodedPosition: vec(s.exploded[0], s.exploded[1], s.exploded[2]),
		ExplodedRotation: vec(s.explodedR[0], s.explodedR[1], s.explodedR[2]),
		AnnotationOffset: vec(s.annotation[0], s.annotation[1], s.annotation[2]),
		AnnotationHeight: s.height,
		Color:            s.color,
		Description:      s.desc,
	}
}

func engineParts() []catalog.Part {
	roll := [3]float64{0, 0, -math.Pi / 2}

	parts := []catalog.Part{
		{
			ID: "eng_pipe_top", Name: "Fuel and cooling pipes", Type: catalog.TypeEnginePipe, RequiredTool: catalog.ToolWrenchSmall,
			Home:             transform([3]float64{1, 0.5, 0}, roll, 1),
			ExplodedPosition: vec(1, 4.5, 0),
			ExplodedRotation: vec(0, 0, 0),
			AnnotationOffset: vec(0, 5, 0),
			AnnotationHeight: 3.5,
			Color:            "#cbd5e1",
			Description:      "External fuel and hydraulic lines. Removed first.",
		},
		{
			ID: "eng_gearbox", Name: "Accessory gearbox", Type: catalog.TypeEngineGearbox, RequiredTool: catalog.ToolWrenchLarge,
			DependencyID:     "eng_pipe_top",
			Home:             transform([3]float64{-0.2, -1.3, 0}, [3]float64{}, 1),
			ExplodedPosition: vec(-0.2, -3.5, 2),
			ExplodedRotation: vec(0.5, 0, 0),
			AnnotationOffset: vec(0, -2.5, 2),
			AnnotationHeight: -2.5,
			Color:            "#94a3b8",
			Description:      "Bevel gear drive and accessory gearbox powering the generator and oil pumps.",
		},
	}

	stages := []engineStage{
		{"eng_nozzle", "Exhaust nozzle", catalog.TypeEngineNozzle, catalog.ToolWrenchLarge, "eng_gearbox", 4.3,
			[3]float64{8, 0.5, 0}, roll, [3]float64{3.5, 0, -2.5}, 0, "#475569", "High temperature alloy exhaust nozzle."},
		{"eng_lpt", "Low pressure turbine", catalog.TypeEngineLPT, catalog.ToolHoist, "eng_nozzle", 3.1,
			[3]float64{5, 0.5, 2}, roll, [3]float64{3.5, 2.5, 0}, 1.5, "#57534e", "Multi-stage turbine driving the fan."},
		{"eng_hpt", "High pressure turbine", catalog.TypeEngineHPT, catalog.ToolHoist, "eng_lpt", 2.15,
			[3]float64{3.5, 0.5, 2}, roll, [3]float64{2.5, 2.5, 0}, 1.0, "#78350f", "Hottest section. Drives the high pressure compressor."},
		{"eng_combustor", "Combustion chamber", catalog.TypeEngineCombustor, catalog.ToolWrenchLarge, "eng_hpt", 1.5,
			[3]float64{1.6, 3.5, 0}, [3]float64{math.Pi / 4, 0, 0}, [3]float64{1.5, 4, 0}, 2.2, "#b45309", "Mixes compressed air with fuel and burns it."},
		{"eng_hpc", "High pressure compressor", catalog.TypeEngineHPC, catalog.ToolHoist, "eng_combustor", 0.35,
			[3]float64{0.4, 0.5, 2.5}, roll, [3]float64{0.5, 2.5, 0}, 0, "#059669", "Multi-stage axial compressor of the core."},
		{"eng_ipc", "Intermediate case", catalog.TypeEngineIPC, catalog.ToolWrenchLarge, "eng_hpc", -0.7,
			[3]float64{-1, 3.5, 0}, [3]float64{}, [3]float64{-1, 0, -3}, 2.5, "#94a3b8", "Structural case between the low and high pressure spools."},
		{"eng_lpc", "Low pressure compressor", catalog.TypeEngineLPC, catalog.ToolHoist, "eng_ipc", -1.4,
			[3]float64{-2, 0.5, 2}, roll, [3]float64{-2.5, 2.5, 0}, 1.0, "#cbd5e1", "Booster stages behind the fan."},
		{"eng_fan_case", "Fan case", catalog.TypeEngineFanCase, catalog.ToolHoist, "eng_lpc", -2.8,
			[3]float64{-5, 0.5, 0}, roll, [3]float64{-5, 0, -4}, 3.0, "#e2e8f0", "Front casing with the inlet and containment ring."},
		{"eng_fan_rotor", "Fan rotor", catalog.TypeEngineFanRotor, catalog.ToolHoist, "eng_fan_case", -2.8,
			[3]float64{-2.8, 0.5, 3.5}, roll, [3]float64{-5, 4, 0}, 0, "#1e293b", "Front fan producing most of the thrust."},
	}
	for _, s := range stages {
		parts = append(parts, s.part())
	}

	return append(parts, catalog.Part{
		ID: "eng_stand", Name: "Transport stand", Type: catalog.TypeEngineStand, RequiredTool: catalog.ToolNone,
		Home:             transform([3]float64{0.5, -3.5, 0}, [3]float64{}, 1),
		ExplodedPosition: vec(0.5, -3.5, 0),
		ExplodedRotation: vec(0, 0, 0),
		AnnotationOffset: vec(0, -3, 0),
		AnnotationHeight: -1,
		Color:            "#facc15",
		Description:      "Ground handling dolly supporting the engine.",
	})
}

func engineSteps() []catalog.Step {
	return []catalog.Step{
		{ID: 200, Title: "Turbofan overview", Action: catalog.ModeInspect,
			Description: "Bypass air from the fan produces most of the thrust."},
		{ID: 201, Title: "Structure: cold section", Action: catalog.ModeInspect,
			Targets:     []string{"eng_fan_rotor", "eng_lpc", "eng_hpc", "eng_fan_case"},
			Description: "The fan and compressors raise the pressure of the incoming air."},
		{ID: 202, Title: "Structure: hot section", Action: catalog.ModeInspect,
			Targets:     []string{"eng_combustor", "eng_hpt", "eng_lpt"},
			Description: "Combustion gas drives the turbines, which drive the compressors and fan."},
		{ID: 211, Title: "Remove the pipes", Action: catalog.ModeDisassemble, Targets: []string{"eng_pipe_top"},
			Description: "Disconnect the external fuel and cooling lines."},
		{ID: 212, Title: "Remove the gearbox", Action: catalog.ModeDisassemble, Targets: []string{"eng_gearbox"},
			Description: "Unbolt the accessory gearbox below the core."},
		{ID: 213, Title: "Remove nozzle and turbines", Action: catalog.ModeDisassemble,
			Targets:     []string{"eng_nozzle", "eng_lpt", "eng_hpt"},
			Description: "Remove the nozzle, then the low and high pressure turbines."},
		{ID: 214, Title: "Remove the core", Action: catalog.ModeDisassemble, Targets: []string{"eng_combustor", "eng_hpc"},
			Description: "Remove the combustor and the high pressure compressor."},
		{ID: 215, Title: "Remove the fan section", Action: catalog.ModeDisassemble,
			Targets:     []string{"eng_ipc", "eng_lpc", "eng_fan_case", "eng_fan_rotor"},
			Description: "Remove the intermediate case, booster, fan case and fan rotor."},
		{ID: 220, Title: "Fan assembly", Action: catalog.ModeAssemble, Targets: []string{"eng_fan_rotor", "eng_fan_case"},
			Description: "Install the fan rotor and its case."},
		{ID: 221, Title: "Compressor assembly", Action: catalog.ModeAssemble, Targets: []string{"eng_lpc", "eng_ipc", "eng_hpc"},
			Description: "Stack the booster, intermediate case and high pressure compressor."},
		{ID: 222, Title: "Combustor assembly", Action: catalog.ModeAssemble, Targets: []string{"eng_combustor"},
			Description: "Install the combustion chamber."},
		{ID: 223, Title: "Turbine assembly", Action: catalog.ModeAssemble, Targets: []string{"eng_hpt", "eng_lpt"},
			Description: "Install the high and low pressure turbines."},
		{ID: 224, Title: "Final integration", Action: catalog.ModeAssemble,
			Targets:     []string{"eng_nozzle", "eng_gearbox", "eng_pipe_top"},
			Description: "Refit the nozzle, gearbox and pipes."},
	}
}

// Engine returns the turbofan engine course.
func Engine() (*catalog.Course, error) {
	c, err := catalog.NewCourse(EngineID, "Three-spool turbofan engine", engineParts(),
		[]catalog.Tool{catalog.ToolWrenchSmall, catalog.ToolWrenchLarge, catalog.ToolHoist},
		engineSteps())
	if err != nil {
		return nil, err
	}
	c.Subtitle = "Aircraft maintenance practice"
	c.Description = "Fan, compressor, combustor, turbine and accessory assembly of a turbofan."
	return c, nil
}
