package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/polds/imgbase64"

	"github.com/prism-render/prism/pkg/renderer"
	"github.com/prism-render/prism/pkg/scene"
)

// SSEEvent is a unified event for the single SSE writer goroutine
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded payload
}

// TileUpdate is sent to the client whenever a tile finishes a pass
type TileUpdate struct {
	TileX       int    `json:"tileX"` // Tile coordinates, not pixels
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // PNG data URI of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent to the client when a full pass completes
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ImageData      string  `json:"imageData"` // PNG data URI of the full image
	IsComplete     bool    `json:"isComplete"`
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	ObjectCount    int     `json:"objectCount"`
	LightCount     int     `json:"lightCount"`
}

// handleRender streams a progressive render to the client via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	// All SSE writes go through one channel so only a single goroutine
	// touches the response writer. The writer drains queued events
	// before the handler returns.
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendError(ctx, sseEventChan, fmt.Sprintf("invalid request: %v", err))
		return
	}

	sc, err := s.loadScene(req.Scene)
	if err != nil {
		s.sendError(ctx, sseEventChan, err.Error())
		return
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = sc.Camera.Width
	}
	if height == 0 {
		height = sc.Camera.Height
	}
	if width <= 0 || height <= 0 {
		s.sendError(ctx, sseEventChan, "scene specifies no image dimensions; pass width and height")
		return
	}

	maxSamples := req.MaxSamples
	if maxSamples == 0 {
		maxSamples = sc.Camera.NumSamples
	}
	if maxSamples == 0 {
		maxSamples = renderer.DefaultSamplingConfig().SamplesPerPixel
	}

	// The console channel itself is never closed: the renderer may keep
	// logging after a disconnect, and a send to a closed channel panics.
	// The pump is stopped through its own handshake instead, before the
	// SSE channel closes.
	consoleChan := make(chan ConsoleMessage, 50)
	consoleStop := make(chan struct{})
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleStop, consoleChan, sseEventChan)
	}()
	defer func() {
		close(consoleStop)
		<-consoleDone
	}()

	config := renderer.ProgressiveConfig{
		TileSize:           defaultTileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: maxSamples,
		MaxPasses:          req.MaxPasses,
		NumWorkers:         0, // Auto-detect
		Sampling: renderer.SamplingConfig{
			BounceLimit:        req.BounceLimit,
			AdaptiveMinSamples: req.AdaptiveMinSamples,
			AdaptiveThreshold:  req.AdaptiveThreshold,
		},
	}

	raytracer := renderer.NewProgressiveRaytracer(sc, width, height, config,
		NewWebLogger(s.logger, consoleChan))

	startTime := time.Now()
	passChan, tileChan, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	s.streamRenderEvents(ctx, sseEventChan, passChan, tileChan, errChan, sc, req, startTime)
}

// parseRenderRequest parses and validates the render query parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 16, 2000); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 7, 1, 10000); err != nil {
		return nil, err
	}
	if req.BounceLimit, err = parseIntParam(query, "bounceLimit", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.AdaptiveMinSamples, err = parseFloatParam(query, "adaptiveMinSamples", 0, 0.01, 1.0); err != nil {
		return nil, err
	}
	if req.AdaptiveThreshold, err = parseFloatParam(query, "adaptiveThreshold", 0, 0.001, 0.5); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.MaxSamples > 100 {
		s.logger.Warning("large image with high samples may render slowly")
	}

	return req, nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents is the only goroutine that writes to the response
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			select {
			case <-ctx.Done():
				return
			default:
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards renderer console output to the SSE channel
func (s *Server) streamConsoleMessages(ctx context.Context, stop <-chan struct{}, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				s.logger.Errorf("marshal console message: %v", err)
				continue
			}

			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full; console output is best effort
			}

		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// streamRenderEvents forwards pass and tile results until the render
// finishes or the client disconnects
func (s *Server) streamRenderEvents(ctx context.Context, sseEventChan chan SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	sc *scene.Scene, req *RenderRequest, startTime time.Time) {

renderLoop:
	for {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.sendPassComplete(ctx, sseEventChan, passResult, req, sc, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.sendTileUpdate(ctx, sseEventChan, tileResult)

		case err := <-errChan:
			if err != nil {
				s.sendError(ctx, sseEventChan, fmt.Sprintf("rendering failed: %v", err))
				return
			}
			// errChan closed: rendering completed
			break renderLoop

		case <-ctx.Done():
			return
		}

		if passChan == nil && tileChan == nil {
			break renderLoop
		}
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "rendering completed"}:
	case <-ctx.Done():
	}
}

// sendPassComplete publishes the assembled image and statistics of a
// finished pass
func (s *Server) sendPassComplete(ctx context.Context, sseEventChan chan SSEEvent,
	passResult renderer.PassResult, req *RenderRequest, sc *scene.Scene, startTime time.Time) {

	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := imageToDataURI(passResult.Image)
	if err != nil {
		s.logger.Errorf("encode pass %d image: %v", passResult.PassNumber, err)
		return
	}

	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		ImageData:      imageData,
		IsComplete:     passResult.IsLast,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalPixels:    passResult.Stats.TotalPixels,
		TotalSamples:   passResult.Stats.TotalSamples,
		AverageSamples: passResult.Stats.AverageSamples,
		MaxSamples:     passResult.Stats.MaxSamples,
		MinSamples:     passResult.Stats.MinSamples,
		MaxSamplesUsed: passResult.Stats.MaxSamplesUsed,
		ObjectCount:    len(sc.Objects),
		LightCount:     len(sc.Lights),
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Errorf("marshal pass update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// sendTileUpdate publishes a freshly rendered tile
func (s *Server) sendTileUpdate(ctx context.Context, sseEventChan chan SSEEvent, tileResult renderer.TileCompletionResult) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	tileData, err := imageToDataURI(tileResult.TileImage)
	if err != nil {
		s.logger.Errorf("encode tile (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Errorf("marshal tile update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// sendError reports a failure to the client over the SSE stream
func (s *Server) sendError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	s.logger.Error(message)
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}

// imageToDataURI encodes an image as a PNG data URI, ready for use as an
// img element's src
func imageToDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return imgbase64.FromBuffer(buf), nil
}
