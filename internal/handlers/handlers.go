package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hellofresh/health-go/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trsst/client/pkg/metrics"
	"github.com/trsst/client/pkg/new/domain/feed"
	"github.com/trsst/client/pkg/new/ports"
)

type AccountSource interface {
	AuthenticatedAccountID() (feed.FeedID, bool)
	Follows() []feed.FeedID
}

type PollsterLister interface {
	List() []*ports.Pollster
}

type PollsterStatus struct {
	ID    string   `json:"id"`
	Kind  string   `json:"kind"`
	Feeds []string `json:"feeds"`
}

type Status struct {
	Account   string           `json:"account,omitempty"`
	Follows   []string         `json:"follows,omitempty"`
	Pollsters []PollsterStatus `json:"pollsters"`
}

// NewStatusRouter serves the health check, metrics and a snapshot of the
// running watcher.
func NewStatusRouter(healthCheck *health.Health, account AccountSource, pollsters PollsterLister) *mux.Router {
	router := mux.NewRouter()
	router.Path("/healthz").HandlerFunc(healthCheck.HandlerFunc)
	router.Path("/metrics").Handler(promhttp.Handler())
	router.Path("/status").Methods(http.MethodGet).HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		HandleStatus(writer, request, account, pollsters)
	})
	return router
}

func HandleStatus(w http.ResponseWriter, r *http.Request, account AccountSource, pollsters PollsterLister) {
	status := Status{Pollsters: []PollsterStatus{}}

	if id, ok := account.AuthenticatedAccountID(); ok {
		status.Account = id.String()
		for _, follow := range account.Follows() {
			status.Follows = append(status.Follows, follow.String())
		}
	}

	for _, pollster := range pollsters.List() {
		pollsterStatus := PollsterStatus{
			ID:    pollster.ID(),
			Kind:  pollster.Kind().String(),
			Feeds: []string{},
		}
		for _, id := range pollster.Feeds() {
			pollsterStatus.Feeds = append(pollsterStatus.Feeds, id.String())
		}
		status.Pollsters = append(status.Pollsters, pollsterStatus)
	}

	response, err := json.Marshal(status)
	if err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "STATUS_JSON"}).Inc()
		log.Printf("[ERROR] failed to encode status: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(response)
}
