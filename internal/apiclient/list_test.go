package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListEnvelope(t *testing.T) {
	page, err := DecodeList[models.Customer]([]byte(`{"customers":[{"id":1},{"id":2}],"totalPages":4}`), "customers")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 4, page.TotalPages)
}

func TestDecodeListSnakeCaseTotal(t *testing.T) {
	page, err := DecodeList[models.Order]([]byte(`{"orders":[],"total_pages":"3"}`), "orders")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
}

func TestDecodeListBareArray(t *testing.T) {
	page, err := DecodeList[models.Customer]([]byte(`[{"id":"a"}]`), "customers")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.TotalPages)
}

func TestDecodeListNormalisesTotal(t *testing.T) {
	page, err := DecodeList[models.Product]([]byte(`{"products":null,"totalPages":0}`), "products")
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestDecodeListRejectsGarbage(t *testing.T) {
	_, err := DecodeList[models.Product]([]byte(`{"products":"nope"}`), "products")
	assert.Error(t, err)
}

func TestGetList(t *testing.T) {
	var query url.Values
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		query = req.URL.Query()
		return jsonResponse(http.StatusOK, `{"products":[{"id":5,"title":"Mug"}],"totalPages":2}`), nil
	})
	page, err := GetList[models.Product](context.Background(), client, "products", url.Values{"tenant_id": {"3"}}, "products")
	require.NoError(t, err)
	assert.Equal(t, "3", query.Get("tenant_id"))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Mug", page.Items[0].Title)
	assert.Equal(t, 2, page.TotalPages)
}
