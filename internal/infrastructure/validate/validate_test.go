package validate_test

import (
	"testing"

	"github.com/hilthontt/burnbox/internal/infrastructure/validate"
	"github.com/stretchr/testify/assert"
)

func TestField_PrefixesName(t *testing.T) {
	v := validate.Field("strategy", validate.Required(), validate.OneOf("queue", "manual"))

	assert.NoError(t, v("queue"))

	err := v("")
	assert.EqualError(t, err, "strategy: this field is required")

	err = v("lottery")
	assert.EqualError(t, err, "strategy: must be one of: queue, manual")
}

func TestCompose_FirstErrorWins(t *testing.T) {
	v := validate.Compose(validate.MinLength(3), validate.NoSpaces())

	assert.EqualError(t, v("a b"), "must not contain spaces")
	assert.EqualError(t, v("a"), "must be at least 3 characters")
	assert.NoError(t, v("abc"))
}

func TestLengthBetween(t *testing.T) {
	v := validate.LengthBetween(2, 4)

	assert.Error(t, v("a"))
	assert.NoError(t, v("ab"))
	assert.NoError(t, v("abcd"))
	assert.Error(t, v("abcde"))
}

func TestMatches(t *testing.T) {
	v := validate.Matches(`^[a-z]+$`, "")
	assert.NoError(t, v("abc"))
	assert.EqualError(t, v("ABC"), "invalid format")

	v = validate.Matches(`^[0-9]+$`, "digits only")
	assert.EqualError(t, v("12a"), "digits only")
}
