// internal/service/order/infrastructure/adapter/menu_adapter.go
package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"bistro/internal/pkg/httpclient"
	"bistro/internal/service/order/domain"
	"bistro/internal/service/order/domain/port"
)

// MenuCatalogAdapter 通过菜单目录服务的 HTTP 接口读取条目。
type MenuCatalogAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewMenuCatalogAdapter(client *httpclient.Client, baseURL string) *MenuCatalogAdapter {
	return &MenuCatalogAdapter{client: client, baseURL: baseURL}
}

func (a *MenuCatalogAdapter) GetItem(ctx context.Context, menuItemID int64) (*port.MenuItem, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(menuItemID, 10))

	var item port.MenuItem
	if err := a.client.GetJSON(ctx, a.baseURL+"/menu/item", params, &item); err != nil {
		// 目录里不存在的条目是领域事实，不是基础设施故障
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, errors.Wrapf(domain.ErrNotFound, "menu item %d", menuItemID)
		}
		return nil, errors.Wrap(err, "failed to fetch menu item")
	}
	return &item, nil
}
