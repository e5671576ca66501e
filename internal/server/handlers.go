package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tinynet-ml/tinynet/internal/demo"
	"github.com/tinynet-ml/tinynet/internal/nn"
)

type structureResponse struct {
	Layers []nn.LayerInfo `json:"layers"`
}

type predictRequest struct {
	Input []float64 `json:"input"`
}

type xorResponse struct {
	Prediction  []float64   `json:"prediction"`
	Activations [][]float64 `json:"activations"`
}

type reconstructionResponse struct {
	Reconstruction []float64 `json:"reconstruction"`
}

type healthResponse struct {
	Status string          `json:"status"`
	Models map[string]bool `json:"models"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStructure(model func() *demo.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := model()
		if !m.Ready() {
			s.notInitialized(w, r)
			return
		}
		layers, err := m.Describe()
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, structureResponse{Layers: layers})
	}
}

func (s *Server) handleXORPredict(w http.ResponseWriter, r *http.Request) {
	m := s.xor()
	if !m.Ready() {
		s.notInitialized(w, r)
		return
	}
	input, ok := s.decodeInput(w, r, m.InputSize())
	if !ok {
		return
	}

	trace, err := m.Trace(input)
	if err != nil {
		s.predictError(w, r, err)
		return
	}
	if !finite(trace...) {
		s.badRequest(w, r, errNonFinite, nil)
		return
	}
	writeJSON(w, http.StatusOK, xorResponse{
		Prediction:  trace[len(trace)-1],
		Activations: trace,
	})
}

func (s *Server) handleAutoencoderPredict(w http.ResponseWriter, r *http.Request) {
	m := s.autoencoder()
	if !m.Ready() {
		s.notInitialized(w, r)
		return
	}
	input, ok := s.decodeInput(w, r, m.InputSize())
	if !ok {
		return
	}

	out, err := m.Predict(input)
	if err != nil {
		s.predictError(w, r, err)
		return
	}
	if !finite(out) {
		s.badRequest(w, r, errNonFinite, nil)
		return
	}
	writeJSON(w, http.StatusOK, reconstructionResponse{Reconstruction: out})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Models: map[string]bool{
			demo.XORName:         s.xor().Restored(),
			demo.AutoencoderName: s.autoencoder().Restored(),
		},
	})
}

// decodeInput reads {"input": [...]} and checks its length. On failure the
// 400 response has already been written.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request, size int) ([]float64, bool) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.badRequest(w, r, "Invalid input: request body must be a JSON object", err)
		return nil, false
	}
	if req.Input == nil {
		s.badRequest(w, r, "Invalid input", nil)
		return nil, false
	}
	if len(req.Input) != size {
		s.badRequest(w, r, fmt.Sprintf("Invalid input: requires a %d-element array.", size), nil)
		return nil, false
	}
	return req.Input, true
}

// errNonFinite is reported when finite input drives an activation to NaN or
// infinity.
const errNonFinite = "Invalid input: values overflow the network"

// finite reports whether no value is NaN or infinite. JSON cannot encode
// either, so a response carrying one must not be written.
func finite(vals ...[]float64) bool {
	for _, v := range vals {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

func (s *Server) predictError(w http.ResponseWriter, r *http.Request, err error) {
	var shapeErr *nn.ShapeMismatchError
	if errors.As(err, &shapeErr) || errors.Is(err, nn.ErrEmptyInput) {
		s.badRequest(w, r, err.Error(), err)
		return
	}
	s.internalError(w, r, err)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Debug("bad request",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("reason", msg),
		zap.Error(err),
	)
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) notInitialized(w http.ResponseWriter, r *http.Request) {
	s.internalError(w, r, demo.ErrNotInitialized)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// writeJSON encodes v before sending any header, so an encoding failure
// becomes a 500 with an error body instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: errors.Wrap(err, "encode response").Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n')) // headers are already sent
}
