package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/gradekit/gradekit/internal/codec"
	"github.com/gradekit/gradekit/internal/params"
	"github.com/gradekit/gradekit/internal/render"
)

// DefaultPreviewDim bounds the long side of interactive previews when the
// client does not ask for a specific size.
const DefaultPreviewDim = 1024

// SourceLoadArgs are the parameters of source/load.
type SourceLoadArgs struct {
	Path string `json:"path"`
}

// SourceLoadResult reports the decoded source's identity and dimensions.
type SourceLoadResult struct {
	SourceID string `json:"source_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (s *Server) handleSourceLoad(req *Request) *Response {
	var args SourceLoadArgs
	if err := json.Unmarshal(req.Params, &args); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "invalid params", err.Error())
	}
	if args.Path == "" {
		return s.errorResponse(req.ID, codeInvalidParams, "invalid params", "path is required")
	}

	entry, err := s.store.Load(args.Path)
	if err != nil {
		return s.errorResponse(req.ID, codeRenderFailed, "source load failed", err.Error())
	}
	s.log.Info("source loaded", "id", entry.ID, "path", args.Path,
		"size", entry.Width*entry.Height)

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: SourceLoadResult{
			SourceID: entry.ID,
			Width:    entry.Width,
			Height:   entry.Height,
		},
	}
}

// SourceEvictArgs are the parameters of source/evict.
type SourceEvictArgs struct {
	SourceID string `json:"source_id"`
}

func (s *Server) handleSourceEvict(req *Request) *Response {
	var args SourceEvictArgs
	if err := json.Unmarshal(req.Params, &args); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "invalid params", err.Error())
	}
	s.store.Evict(args.SourceID)
	s.dropSession(args.SourceID)
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
}

// GradeArgs are the shared parameters of grade/preview and grade/export.
// Parameters and local adjustments decode with neutral defaults for any
// field the client leaves out.
type GradeArgs struct {
	SourceID         string                   `json:"source_id"`
	Parameters       params.ColorParams       `json:"parameters"`
	LocalAdjustments []params.LocalAdjustment `json:"local_adjustments,omitempty"`
	MaxDimension     int                      `json:"max_dimension,omitempty"` // preview only
	Format           string                   `json:"format,omitempty"`        // export only
	Quality          int                      `json:"quality,omitempty"`       // export only
}

// GradeResult carries an encoded raster back to the client.
type GradeResult struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	// Stale is set on preview results that were superseded by a newer
	// request before completing; clients should drop them.
	Stale bool `json:"stale,omitempty"`
}

func (s *Server) decodeGradeArgs(req *Request) (*GradeArgs, render.Source, *Response) {
	args := &GradeArgs{Parameters: params.Neutral()}
	if err := json.Unmarshal(req.Params, args); err != nil {
		return nil, render.Source{}, s.errorResponse(req.ID, codeInvalidParams, "invalid params", err.Error())
	}
	entry, ok := s.store.Get(args.SourceID)
	if !ok {
		return nil, render.Source{}, s.errorResponse(req.ID, codeInvalidParams, "invalid params",
			"unknown source_id: "+args.SourceID)
	}
	return args, render.Source{ID: entry.ID, Image: entry.Image}, nil
}

// renderError classifies engine failures: parameter/region validation
// problems are the client's to fix, everything else is a server-side
// render failure.
func (s *Server) renderError(id interface{}, err error) *Response {
	var badRegion *params.ErrUnsupportedRegion
	if errors.Is(err, params.ErrCurveNotMonotonic) || errors.As(err, &badRegion) {
		return s.errorResponse(id, codeInvalidParams, "invalid grading parameters", err.Error())
	}
	return s.errorResponse(id, codeRenderFailed, "render failed", err.Error())
}

func (s *Server) handleGradePreview(req *Request) *Response {
	args, src, errResp := s.decodeGradeArgs(req)
	if errResp != nil {
		return errResp
	}
	maxDim := args.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultPreviewDim
	}

	raster, stale, err := s.session(src).Preview(context.Background(), args.Parameters, args.LocalAdjustments, maxDim)
	if err != nil {
		return s.renderError(req.ID, err)
	}

	var buf bytes.Buffer
	mime, err := codec.Encode(&buf, raster.Image(), codec.FormatJPEG, 85)
	if err != nil {
		return s.errorResponse(req.ID, codeRenderFailed, "encode failed", err.Error())
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: GradeResult{
			ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
			MimeType:    mime,
			Width:       raster.W,
			Height:      raster.H,
			Stale:       stale,
		},
	}
}

func (s *Server) handleGradeExport(req *Request) *Response {
	args, src, errResp := s.decodeGradeArgs(req)
	if errResp != nil {
		return errResp
	}
	format := args.Format
	if format == "" {
		format = codec.FormatJPEG
	}
	quality := args.Quality
	if quality == 0 {
		quality = codec.DefaultQuality
	}

	raster, err := s.engine.Export(context.Background(), src, args.Parameters, args.LocalAdjustments)
	if err != nil {
		return s.renderError(req.ID, err)
	}

	var buf bytes.Buffer
	mime, err := codec.Encode(&buf, raster.Image(), format, quality)
	if err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "encode failed", err.Error())
	}
	s.log.Info("export rendered", "source", src.ID, "format", format,
		"width", raster.W, "height", raster.H)

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: GradeResult{
			ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
			MimeType:    mime,
			Width:       raster.W,
			Height:      raster.H,
		},
	}
}
