// internal/service/order/infrastructure/adapter/menu_adapter_test.go
package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace/noop"

	"bistro/internal/pkg/httpclient"
	"bistro/internal/service/order/domain"
)

func newMenuServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":1,"name":"Margherita","price":12.5,"is_available":true}`))
		case "500":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetItem(t *testing.T) {
	srv := newMenuServer(t)
	client := httpclient.NewClient(noop.NewTracerProvider().Tracer("test"))
	menu := NewMenuCatalogAdapter(client, srv.URL)
	ctx := context.Background()

	item, err := menu.GetItem(ctx, 1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Name != "Margherita" || item.Price != 12.5 || !item.IsAvailable {
		t.Errorf("item = %+v, want Margherita 12.5 available", item)
	}

	// 目录里不存在的条目映射为领域层的 ErrNotFound
	if _, err := menu.GetItem(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing item error = %v, want ErrNotFound", err)
	}

	// 下游真正的故障保持为基础设施错误，不被误判成不存在
	if _, err := menu.GetItem(ctx, 500); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("downstream failure error = %v, want a non-ErrNotFound error", err)
	}
}
