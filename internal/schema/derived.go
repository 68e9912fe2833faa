package schema

import (
	"fmt"
	"math"
	"strconv"

	"arrimeta/internal/failures"
	"arrimeta/internal/metadata"
)

// ShutterAngle derives the shutter angle in degrees from an exposure time in
// milliseconds and a sensor frame rate.
func ShutterAngle(inputs []metadata.Value) (metadata.Value, error) {
	exposureMS, err := numericInput(inputs, 0, "exposure time")
	if err != nil {
		return metadata.Value{}, err
	}
	fps, err := numericInput(inputs, 1, "sensor fps")
	if err != nil {
		return metadata.Value{}, err
	}
	angle := 360 * (exposureMS / 1000) * fps
	return metadata.Float(roundTo(angle, 2)), nil
}

// special linear iris codes from the lens data block.
var tStopCodes = map[int64]string{
	-3: "NearClose",
	-2: "Close",
	-1: "Invalid",
}

// TStop converts a linear iris value (1000 × (2·log2(T) + 1)) to a T-stop.
func TStop(inputs []metadata.Value) (metadata.Value, error) {
	if len(inputs) < 1 {
		return metadata.Value{}, deriveError("linear iris input missing")
	}
	raw, ok := inputs[0].Int64()
	if !ok {
		return metadata.Value{}, deriveError(fmt.Sprintf("linear iris is %s, want integer", inputs[0].Kind()))
	}
	if label, ok := tStopCodes[raw]; ok {
		return metadata.String(label), nil
	}
	t := math.Pow(2, ((float64(raw)/1000)-1)/2)
	return metadata.String(strconv.FormatFloat(roundTo(t, 2), 'f', -1, 64)), nil
}

// Resolution formats a width/height pair as WxH.
func Resolution(inputs []metadata.Value) (metadata.Value, error) {
	if len(inputs) < 2 {
		return metadata.Value{}, deriveError("resolution needs width and height")
	}
	w, okW := inputs[0].Int64()
	h, okH := inputs[1].Int64()
	if !okW || !okH {
		return metadata.Value{}, deriveError("resolution inputs must be integers")
	}
	return metadata.String(fmt.Sprintf("%dx%d", w, h)), nil
}

func numericInput(inputs []metadata.Value, i int, label string) (float64, error) {
	if i >= len(inputs) {
		return 0, deriveError(label + " input missing")
	}
	f, ok := inputs[i].Float64()
	if !ok {
		return 0, deriveError(fmt.Sprintf("%s is %s, want number", label, inputs[i].Kind()))
	}
	return f, nil
}

func deriveError(message string) error {
	return failures.Wrap(failures.ErrDecode, "derive", "", message, nil)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
