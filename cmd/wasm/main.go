//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/detect"
	"github.com/himanishpuri/DropDNA/pkg/models"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorMalformedAnalysis
)

// Runs drop detection over an audio-analysis JSON document. There is no
// cache and no network access; the caller fetches the analysis.
// Arguments: analysisJSON, durationMs[, loudnessOffsetDb[, previewLengthMs]]
// Returns: {error: number, data: object | string}
func detectDrop(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 2 arguments: analysisJSON, durationMs")
	}

	analysisJS := args[0]
	durationJS := args[1]

	if analysisJS.Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "analysisJSON must be a string")
	}
	if durationJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "durationMs must be a number")
	}

	params := models.DefaultParams()
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		params.LoudnessOffsetDb = args[2].Float()
	}
	if len(args) > 3 && args[3].Type() == js.TypeNumber {
		params.PreviewLengthMs = args[3].Int()
	}
	params = params.Sanitize(models.DefaultParams())

	durationMs := durationJS.Int()
	if durationMs < 0 {
		durationMs = 0
	}

	out, fs, err := detect.RunJSON([]byte(analysisJS.String()), durationMs, params.LoudnessOffsetDb)
	if err != nil {
		return makeErrorResponse(ErrorMalformedAnalysis, fmt.Sprintf("Failed to read analysis: %v", err))
	}

	data := js.Global().Get("Object").New()
	data.Set("drop_start_ms", out.StartMs)
	data.Set("stop_ms", out.StartMs+params.PreviewLengthMs)
	data.Set("preview_length_ms", params.PreviewLengthMs)
	data.Set("confidence", out.Confidence)
	data.Set("method", string(out.Method))
	data.Set("raw_score", out.RawScore)
	data.Set("threshold_db", out.Threshold)
	data.Set("tempo_bpm", fs.Track.TempoBpm)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "🔧 DropDNA WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("detectDrop", js.FuncOf(detectDrop))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "❌ window object is undefined!")
	}

	if !console.IsUndefined() {
		console.Call("log", "✅ DropDNA WASM module loaded and ready")
	}

	<-done
}
