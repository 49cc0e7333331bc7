package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

func rec(item string) entity.Record {
	return entity.Record{
		Kind:   constants.Invoice,
		Fields: map[string]entity.Value{"articulo": entity.Of(item)},
	}
}

func TestMergeOrdersAcrossSegments(t *testing.T) {
	// outcomes arrive out of order, as they would from concurrent workers
	outcomes := []entity.SegmentOutcome{
		{Index: 2, Records: []entity.Record{rec("C")}},
		{Index: 1, Records: []entity.Record{rec("A"), rec("B")}},
	}

	res := Merge(constants.Invoice, outcomes)

	require.Len(t, res.Records, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, res.Records[i].Field("articulo").Text())
		assert.Equal(t, i+1, res.Records[i].Seq)
	}
	assert.Equal(t, 1, res.Records[1].Segment)
	assert.Equal(t, 2, res.Records[2].Segment)
	assert.Equal(t, "3", res.Records[2].Field(constants.FieldOrderNumber).Text())
	assert.Equal(t, 2, res.SegmentsTotal)
	assert.Equal(t, 0, res.SegmentsFailed)
	assert.Empty(t, res.Alerts)
	assert.Equal(t, constants.RunSucceeded, res.Outcome())
}

func TestMergeDedupsReferences(t *testing.T) {
	r := entity.Record{
		Kind:       constants.Deed,
		Fields:     map[string]entity.Value{},
		References: []string{"1234567A1234567BC", "1234567a1234567bc", " 7654321Z7654321XY "},
	}

	res := Merge(constants.Deed, []entity.SegmentOutcome{{Index: 1, Records: []entity.Record{r}}})

	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{"1234567A1234567BC", "7654321Z7654321XY"}, res.Records[0].References)
	assert.False(t, res.Records[0].Field(constants.FieldOrderNumber).IsPresent())
}

func TestMergeTotalFailure(t *testing.T) {
	outcomes := []entity.SegmentOutcome{
		{Index: 1, Err: errors.New("timeout")},
		{Index: 2, Failures: []entity.Failure{{Kind: entity.FailureRecovery, Segment: 2, Record: -1}}},
		{Index: 3},
	}

	res := Merge(constants.Invoice, outcomes)

	assert.Empty(t, res.Records)
	assert.Equal(t, 3, res.SegmentsTotal)
	assert.Equal(t, 3, res.SegmentsFailed)
	require.Len(t, res.Alerts, 4)
	assert.Equal(t, entity.AlertAllSegmentsFailed, res.Alerts[3].Code)
	assert.Equal(t, 1, res.Alerts[0].Segment)
	assert.Len(t, res.Failures, 1)
	assert.Equal(t, constants.RunFailed, res.Outcome())
}

func TestMergeAlertsInSegmentOrderAndTitle(t *testing.T) {
	outcomes := []entity.SegmentOutcome{
		{Index: 3, Records: []entity.Record{rec("Z")}, Title: "Donación",
			Alerts: []entity.Alert{{Code: entity.AlertModelReported, Segment: 3, Message: "c"}}},
		{Index: 1, Records: []entity.Record{rec("X")},
			Alerts: []entity.Alert{{Code: entity.AlertModelReported, Segment: 1, Message: "a"}}},
		{Index: 2, Title: "Herencia"},
	}

	res := Merge(constants.Deed, outcomes)

	assert.Equal(t, "Herencia", res.Title)
	require.Len(t, res.Alerts, 3)
	assert.Equal(t, "a", res.Alerts[0].Message)
	assert.Equal(t, entity.AlertSegmentFailed, res.Alerts[1].Code)
	assert.Equal(t, 2, res.Alerts[1].Segment)
	assert.Equal(t, "c", res.Alerts[2].Message)
	assert.Equal(t, 1, res.SegmentsFailed)
	assert.Equal(t, constants.RunPartial, res.Outcome())
}

func TestMergeEmpty(t *testing.T) {
	res := Merge(constants.Invoice, nil)
	assert.Equal(t, 0, res.SegmentsTotal)
	assert.Empty(t, res.Alerts)
	assert.NotNil(t, res.Records)
}
