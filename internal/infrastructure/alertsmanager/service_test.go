package alertsmanager_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/arkade-os/xreserve/internal/infrastructure/alertsmanager"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	t.Run("assets trapped", func(t *testing.T) {
		var received []alertsmanager.Alert
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		svc := alertsmanager.NewService(srv.URL, "asset-hub")
		err := svc.Publish(context.Background(), ports.AssetsTrapped, ports.AssetsTrappedAlert{
			Hash:   "abcd",
			Origin: "../Parachain(1000)",
			Assets: []string{"90 of .."},
			Count:  1,
		})
		require.NoError(t, err)
		require.Len(t, received, 1)
		require.Equal(t, "Assets Trapped", received[0].Labels["alertname"])
		require.Equal(t, "abcd", received[0].Labels["hash"])
		require.Equal(t, "asset-hub", received[0].Labels["chain"])
		require.Contains(t, received[0].Annotations["description"], "90 of ..")
	})

	t.Run("invalid message type", func(t *testing.T) {
		svc := alertsmanager.NewService("http://127.0.0.1:1", "")
		err := svc.Publish(context.Background(), ports.TransferRolledBack, "oops")
		require.Error(t, err)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		svc := alertsmanager.NewService(srv.URL, "")
		err := svc.Publish(context.Background(), ports.TransferRolledBack, ports.TransferRolledBackAlert{
			MessageId: "id", Account: "alice", Refunded: 110, Currency: "native",
		})
		require.NoError(t, err)
		require.EqualValues(t, 3, calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		svc := alertsmanager.NewService(srv.URL, "")
		err := svc.Publish(context.Background(), "Other", map[string]string{"a": "b"})
		require.Error(t, err)
		require.EqualValues(t, 1, calls.Load())
	})
}
