package service

import (
	"testing"

	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/stretchr/testify/assert"
)

func TestFilterTiktokVideos(t *testing.T) {
	videos := []transfer.TiktokVideo{
		{ID: "old", CreateTime: testNow.AddDate(0, 0, -30).Unix()},
		{ID: "mid", CreateTime: testNow.AddDate(0, 0, -5).Unix()},
		{ID: "new", CreateTime: testNow.Unix()},
	}

	assert.Len(t, filterTiktokVideos(videos, nil), 3)

	got := filterTiktokVideos(videos, &transfer.DateRange{Since: testNow.AddDate(0, 0, -7), Until: testNow.AddDate(0, 0, -1)})
	assert.Len(t, got, 1)
	assert.Equal(t, "mid", got[0].ID)

	got = filterTiktokVideos(videos, &transfer.DateRange{Since: testNow.AddDate(0, 0, -7)})
	assert.Len(t, got, 2)
}
