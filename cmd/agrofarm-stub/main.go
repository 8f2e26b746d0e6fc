// Command agrofarm-stub serves the in-memory stand-in for the AgroFarm
// backend on localhost, for developing against the SDK without the hosted
// deployment. State lives in memory and is gone on exit; verification codes
// are printed to the log instead of emailed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"agrofarm/internal/platform/httpserver"
	"agrofarm/internal/platform/logger"
	"agrofarm/internal/stub"
)

func main() {
	addr := os.Getenv("AGROFARM_STUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	signingKey := os.Getenv("AGROFARM_STUB_SIGNING_KEY")
	if signingKey == "" {
		// Fine for a local stub; never reachable from a real deployment.
		signingKey = "agrofarm-stub-dev-key"
	}

	log := logger.New()
	backend := stub.New(log, []byte(signingKey))
	srv := httpserver.New(addr, backend.Router())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("serving stub backend on %s (base URL http://localhost%s/api/)", addr, addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("stub server: %v", err)
	}
}
