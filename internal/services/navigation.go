package services

import (
	"sync"
)

// View names a client-side screen the caller is sent to.
type View string

const (
	ViewIncidentDetail View = "incident-detail"
	ViewDirectory      View = "directory"
	ViewCenterReport   View = "center-report"
)

// Navigator is the "go to view X with params" capability used after a
// successful submission.
type Navigator interface {
	Navigate(view View, params map[string]string)
}

// Destination is a navigation request as reported back to HTTP clients.
type Destination struct {
	View   View              `json:"view"`
	Params map[string]string `json:"params,omitempty"`
	Path   string            `json:"path"`
}

func pathFor(view View, params map[string]string) string {
	switch view {
	case ViewIncidentDetail:
		return "/incident/" + params["id"]
	case ViewCenterReport:
		return "/center/" + params["id"]
	case ViewDirectory:
		return "/directory"
	default:
		return "/"
	}
}

// RecordingNavigator keeps the last navigation request so the HTTP layer can
// hand it to the client.
type RecordingNavigator struct {
	mu   sync.Mutex
	last *Destination
}

func (n *RecordingNavigator) Navigate(view View, params map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	n.last = &Destination{View: view, Params: copied, Path: pathFor(view, copied)}
}

// Last returns the most recent destination, if any.
func (n *RecordingNavigator) Last() (Destination, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		return Destination{}, false
	}
	return *n.last, true
}

func (n *RecordingNavigator) Clear() {
	n.mu.Lock()
	n.last = nil
	n.mu.Unlock()
}
