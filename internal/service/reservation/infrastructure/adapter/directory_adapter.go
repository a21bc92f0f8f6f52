// internal/service/reservation/infrastructure/adapter/directory_adapter.go
package adapter

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"bistro/internal/pkg/httpclient"
)

// DirectoryAdapter 通过员工目录服务的 HTTP 接口回答角色查询。
type DirectoryAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewDirectoryAdapter(client *httpclient.Client, baseURL string) *DirectoryAdapter {
	return &DirectoryAdapter{client: client, baseURL: baseURL}
}

type roleResponse struct {
	IsStaffOrOwner bool `json:"is_staff_or_owner"`
}

func (a *DirectoryAdapter) IsStaffOrOwner(ctx context.Context, restaurantID, userID string) (bool, error) {
	params := url.Values{}
	params.Set("restaurant_id", restaurantID)
	params.Set("user_id", userID)

	var resp roleResponse
	if err := a.client.GetJSON(ctx, a.baseURL+"/directory/role", params, &resp); err != nil {
		return false, errors.Wrap(err, "failed to query staff directory")
	}
	return resp.IsStaffOrOwner, nil
}
