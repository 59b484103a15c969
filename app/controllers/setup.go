package controllers

import (
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/audit"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/blobstore"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/subscription"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/tryon"
)

var (
	tryonService        *tryon.Service
	subscriptionService *subscription.Service
	auditSink           audit.Sink
	blobStorage         blobstore.Storage
)

// Initialize injects the services all controllers depend on. Must run before
// routes are registered.
func Initialize(ts *tryon.Service, ss *subscription.Service, sink audit.Sink, storage blobstore.Storage) {
	tryonService = ts
	subscriptionService = ss
	auditSink = sink
	blobStorage = storage
}
