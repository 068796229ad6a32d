package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// InvalidatorTestSuite тестовый suite для тегированной инвалидации кеша
type InvalidatorTestSuite struct {
	suite.Suite
	miniRedis   *miniredis.Miniredis
	rdb         *redis.Client
	client      *Client
	invalidator *Invalidator
}

func TestInvalidatorSuite(t *testing.T) {
	suite.Run(t, new(InvalidatorTestSuite))
}

func (s *InvalidatorTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.rdb = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.client = NewClientWithRedis(s.rdb)
	s.invalidator = NewInvalidator(s.client)
}

func (s *InvalidatorTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *InvalidatorTestSuite) TearDownSuite() {
	s.rdb.Close()
	s.miniRedis.Close()
}

func (s *InvalidatorTestSuite) seed(keys ...string) {
	ctx := context.Background()
	for _, key := range keys {
		require.NoError(s.T(), s.client.Set(ctx, key, []byte("cached"), time.Minute))
	}
}

func (s *InvalidatorTestSuite) TestInvalidate_ProductTag() {
	s.seed(KeyLatestProducts, KeyAllProducts, KeyCategories, ProductKey("p1"), ProductKey("p2"))

	s.invalidator.Invalidate(context.Background(), Tags{
		Product:    true,
		ProductIDs: []string{"p1", "p2"},
	})

	assert.False(s.T(), s.miniRedis.Exists(KeyLatestProducts))
	assert.False(s.T(), s.miniRedis.Exists(KeyAllProducts))
	assert.False(s.T(), s.miniRedis.Exists(KeyCategories))
	assert.False(s.T(), s.miniRedis.Exists(ProductKey("p1")))
	assert.False(s.T(), s.miniRedis.Exists(ProductKey("p2")))
}

func (s *InvalidatorTestSuite) TestInvalidate_OrderTag() {
	s.seed(KeyAllOrders, MyOrdersKey("u1"), OrderKey("o1"))

	s.invalidator.Invalidate(context.Background(), Tags{
		Order:   true,
		UserID:  "u1",
		OrderID: "o1",
	})

	assert.False(s.T(), s.miniRedis.Exists(KeyAllOrders))
	assert.False(s.T(), s.miniRedis.Exists(MyOrdersKey("u1")))
	assert.False(s.T(), s.miniRedis.Exists(OrderKey("o1")))
}

func (s *InvalidatorTestSuite) TestInvalidate_AdminTag() {
	s.seed(KeyAdminStats, KeyAdminCharts)

	s.invalidator.Invalidate(context.Background(), Tags{Admin: true})

	assert.False(s.T(), s.miniRedis.Exists(KeyAdminStats))
	assert.False(s.T(), s.miniRedis.Exists(KeyAdminCharts))
}

func (s *InvalidatorTestSuite) TestInvalidate_ReviewTag() {
	s.seed(ReviewsKey("p1"))

	s.invalidator.Invalidate(context.Background(), Tags{
		Review:          true,
		ReviewProductID: "p1",
	})

	assert.False(s.T(), s.miniRedis.Exists(ReviewsKey("p1")))
}

func (s *InvalidatorTestSuite) TestInvalidate_UntouchedKeysSurvive() {
	s.seed(KeyAllProducts, KeyAllOrders, ReviewsKey("p1"), MyOrdersKey("u2"))

	// Мутация товара не должна трогать заказы и отзывы
	s.invalidator.Invalidate(context.Background(), Tags{Product: true})

	assert.False(s.T(), s.miniRedis.Exists(KeyAllProducts))
	assert.True(s.T(), s.miniRedis.Exists(KeyAllOrders))
	assert.True(s.T(), s.miniRedis.Exists(ReviewsKey("p1")))
	assert.True(s.T(), s.miniRedis.Exists(MyOrdersKey("u2")))
}

func (s *InvalidatorTestSuite) TestInvalidate_FilteredListsNotTracked() {
	// Фильтрованные списки живут по TTL, точечно не удаляются
	listKey := ProductsKey("phone", "asc", "electronics", 1000, 1)
	s.seed(listKey)

	s.invalidator.Invalidate(context.Background(), Tags{
		Product:    true,
		ProductIDs: []string{"p1"},
	})

	assert.True(s.T(), s.miniRedis.Exists(listKey))
}

func (s *InvalidatorTestSuite) TestInvalidate_EmptyTagsNoOp() {
	s.seed(KeyAllProducts)

	s.invalidator.Invalidate(context.Background(), Tags{})

	assert.True(s.T(), s.miniRedis.Exists(KeyAllProducts))
}

func (s *InvalidatorTestSuite) TestInvalidate_RedisDownDoesNotPanic() {
	mr, err := miniredis.Run()
	require.NoError(s.T(), err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	invalidator := NewInvalidator(NewClientWithRedis(rdb))

	mr.Close()

	// Ошибка удаления логируется, мутация хранилища не откатывается
	invalidator.Invalidate(context.Background(), Tags{Product: true})

	rdb.Close()
}
