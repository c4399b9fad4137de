package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripseek/tripseek/schema"
)

func TestBuildFilterExpr(t *testing.T) {
	assert.Equal(t, "", BuildFilterExpr(nil))
	assert.Equal(t, "", BuildFilterExpr(&schema.UserFeatures{}))
	assert.Equal(t, "price_level <= 1", BuildFilterExpr(&schema.UserFeatures{MealBudget: 15}))
	assert.Equal(t, "price_level <= 2", BuildFilterExpr(&schema.UserFeatures{MealBudget: 50}))
	assert.Equal(t, "price_level >= 2 && price_level <= 3", BuildFilterExpr(&schema.UserFeatures{MealBudget: 80}))
	assert.Equal(t, "price_level >= 3", BuildFilterExpr(&schema.UserFeatures{MealBudget: 200}))
}
