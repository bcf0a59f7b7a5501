package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStageMapping(t *testing.T) {
	mapping := DefaultStageMapping()

	assert.Equal(t, "Shipped", mapping["closedwon"])
	assert.Equal(t, "Cancelled", mapping["closedlost"])
	assert.Equal(t, "Pending", mapping["qualifiedtobuy"])
	assert.Len(t, mapping, 6)

	// mutating the copy must not leak into the defaults
	mapping["closedwon"] = "Custom"
	assert.Equal(t, "Shipped", DefaultStageMapping()["closedwon"])
}

func TestEffectiveStageMapping(t *testing.T) {
	t.Run("overrides win key by key", func(t *testing.T) {
		mapping := EffectiveStageMapping(map[string]string{
			"closedwon": "Completed",
			"newstage":  "On Hold",
		})

		assert.Equal(t, "Completed", mapping["closedwon"])
		assert.Equal(t, "On Hold", mapping["newstage"])
		// untouched defaults survive
		assert.Equal(t, "Cancelled", mapping["closedlost"])
		assert.Equal(t, "Awaiting Payment", mapping["presentationscheduled"])
	})

	t.Run("nil overrides yield defaults", func(t *testing.T) {
		assert.Equal(t, DefaultStageMapping(), EffectiveStageMapping(nil))
	})
}
