package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFromQuery(query string) *PageParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/shipments?"+query, nil)
	return ParsePageParams(c)
}

func TestParsePageParams(t *testing.T) {
	p := paramsFromQuery("page=3&page_size=20")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.PageSize)

	// 非法值回退默认
	p = paramsFromQuery("page=abc&page_size=-1")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	// 超过上限被夹取
	p = paramsFromQuery("page_size=5000")
	assert.Equal(t, MaxPageSize, p.PageSize)
}

func TestPageParamsOffsetLimit(t *testing.T) {
	p := &PageParams{Page: 1, PageSize: 10}
	assert.Equal(t, 0, p.GetOffset())
	assert.Equal(t, 10, p.GetLimit())

	p = &PageParams{Page: 4, PageSize: 25}
	assert.Equal(t, 75, p.GetOffset())
	assert.Equal(t, 25, p.GetLimit())
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(&PageParams{Page: 2, PageSize: 10}, 35)
	assert.Equal(t, 4, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	info = NewPageInfo(&PageParams{Page: 1, PageSize: 10}, 5)
	assert.Equal(t, 1, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrev)
}
