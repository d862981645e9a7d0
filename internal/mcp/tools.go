package mcp

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/repforge/repforge/internal/units"
)

var unitNames = []string{
	string(units.Pounds), string(units.Kilos),
	string(units.DistanceM), string(units.DistanceFt), string(units.DistanceYd), string(units.DistanceMi),
}

// --- Tool definitions ---

var toolConvertWeight = mcp.NewTool("convert_weight",
	mcp.WithDescription("Convert a magnitude between pounds and kilos, or between distance units (meters, feet, yards, miles). Weight to distance answers 0."),
	mcp.WithString("value", mcp.Required(), mcp.Description("Number to convert, e.g. '135' or '5.5'")),
	mcp.WithString("from", mcp.Required(), mcp.Description("Source unit"), mcp.Enum(unitNames...)),
	mcp.WithString("to", mcp.Required(), mcp.Description("Target unit"), mcp.Enum(unitNames...)),
)

var toolWeightToPercentage = mcp.NewTool("weight_to_percentage",
	mcp.WithDescription("Express a weight as a whole percentage of the exercise's recorded max, e.g. '75%'. Empty when no max is recorded."),
	mcp.WithString("weight", mcp.Required(), mcp.Description("Weight in the unit of the recorded max, e.g. '150' or '150 lbs'")),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name as recorded (case-insensitive)")),
)

var toolPercentageToWeight = mcp.NewTool("percentage_to_weight",
	mcp.WithDescription("Compute a percentage of the exercise's recorded max in the target unit. Pounds round to 2.5, miles to hundredths, everything else to whole units. Empty when no usable max is recorded."),
	mcp.WithString("percentage", mcp.Required(), mcp.Description("Percentage, e.g. '80' or '80%'")),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name as recorded (case-insensitive)")),
	mcp.WithString("unit", mcp.Description("Target unit. Defaults to pounds."), mcp.Enum(unitNames...)),
)

var toolSetMaxWeight = mcp.NewTool("set_max_weight",
	mcp.WithDescription("Create or overwrite the max weight recorded for an exercise."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithString("weight", mcp.Required(), mcp.Description("Max weight, e.g. '315'")),
	mcp.WithString("unit", mcp.Required(), mcp.Description("Unit of the weight"), mcp.Enum(unitNames...)),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Return the active program: weeks in order and every workout with its exercises, circuits and sets."),
)

var toolListLibrary = mcp.NewTool("list_library",
	mcp.WithDescription("List saved templates. Workout and week templates can be loaded into the active program; program templates can replace it."),
	mcp.WithString("kind", mcp.Description("Which library to list. Defaults to workouts."), mcp.Enum("workouts", "weeks", "programs")),
)

var toolLoadLibraryWorkout = mcp.NewTool("load_library_workout",
	mcp.WithDescription("Copy a saved workout template into a week of the active program with fresh ids. Returns the new workout id."),
	mcp.WithString("library_id", mcp.Required(), mcp.Description("Id of the workout template (see list_library)")),
	mcp.WithString("week_id", mcp.Required(), mcp.Description("Id of the target week in the active program (see get_program)")),
	mcp.WithString("day", mcp.Description("Day number for the copy. Defaults to the template's day.")),
)

// --- Tool handlers ---

func parseUnit(req mcp.CallToolRequest, key, fallback string) (units.Unit, *mcp.CallToolResult) {
	u, err := units.Parse(req.GetString(key, fallback))
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return u, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) convertWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value parameter is required"), nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return mcp.NewToolResultError("value must be a number"), nil
	}
	from, res := parseUnit(req, "from", "")
	if res != nil {
		return res, nil
	}
	to, res := parseUnit(req, "to", "")
	if res != nil {
		return res, nil
	}
	return jsonResult(map[string]any{
		"value": units.ConvertWeight(value, from, to),
		"unit":  to,
	})
}

func (h *handlers) weightToPercentage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireString("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	pct, err := h.ds.WeightToPercentage(ctx, weight, exercise)
	if err != nil {
		h.log.Error("mcp weight_to_percentage", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(pct), nil
}

func (h *handlers) percentageToWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pct, err := req.RequireString("percentage")
	if err != nil {
		return mcp.NewToolResultError("percentage parameter is required"), nil
	}
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	unit, res := parseUnit(req, "unit", string(units.Pounds))
	if res != nil {
		return res, nil
	}

	weight, err := h.ds.PercentageToWeight(ctx, pct, exercise, unit)
	if err != nil {
		h.log.Error("mcp percentage_to_weight", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(weight), nil
}

func (h *handlers) setMaxWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	weight, err := req.RequireString("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	unit, res := parseUnit(req, "unit", "")
	if res != nil {
		return res, nil
	}

	rec, err := h.ds.SetMaxWeight(ctx, exercise, weight, unit)
	if err != nil {
		h.log.Error("mcp set_max_weight", "error", err)
		return mcp.NewToolResultError("update failed: " + err.Error()), nil
	}
	return jsonResult(rec)
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.Program(ctx)
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) listLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		entries any
		err     error
	)
	switch kind := req.GetString("kind", "workouts"); kind {
	case "workouts":
		entries, err = h.ds.WorkoutTemplates(ctx)
	case "weeks":
		entries, err = h.ds.WeekTemplates(ctx)
	case "programs":
		entries, err = h.ds.ProgramTemplates(ctx)
	default:
		return mcp.NewToolResultError("unknown library kind: " + kind), nil
	}
	if err != nil {
		h.log.Error("mcp list_library", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) loadLibraryWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	libraryID, err := req.RequireString("library_id")
	if err != nil {
		return mcp.NewToolResultError("library_id parameter is required"), nil
	}
	weekID, err := req.RequireString("week_id")
	if err != nil {
		return mcp.NewToolResultError("week_id parameter is required"), nil
	}
	day := 0
	if raw := req.GetString("day", ""); raw != "" {
		if day, err = strconv.Atoi(raw); err != nil || day < 1 {
			return mcp.NewToolResultError("day must be a positive whole number"), nil
		}
	}

	id, err := h.ds.LoadWorkout(ctx, libraryID, weekID, day)
	if err != nil {
		h.log.Warn("mcp load_library_workout", "error", err)
		return mcp.NewToolResultError("load failed: " + err.Error()), nil
	}
	return jsonResult(map[string]string{"workout_id": id})
}
