package extract

import (
	"fmt"
	"math"

	"github.com/dhcgn/mbox-to-postgres/model"
)

// RecordID converts an archive ordinal into the INTEGER primary key.
func RecordID(index int) (int32, error) {
	if index < 0 || index > math.MaxInt32 {
		return 0, fmt.Errorf("index %d out of range for record id", index)
	}
	return int32(index), nil
}

// Build derives the record for entry. Any returned error is a *model.Error
// with a per-record kind.
func Build(entry model.Entry) (model.Record, error) {
	id, err := RecordID(entry.Index)
	if err != nil {
		return model.Record{}, model.RecordError(model.KindRecordID, entry.Index, err)
	}

	address, err := Address(entry)
	if err != nil {
		return model.Record{}, model.RecordError(model.KindAddress, entry.Index, err)
	}

	domain := Domain(address)

	ts, err := Timestamp(entry.EnvelopeDate)
	if err != nil {
		return model.Record{}, model.RecordError(model.KindTimestamp, entry.Index, err)
	}

	return model.Record{
		ID:        id,
		Address:   address,
		Domain:    domain,
		Timestamp: ts,
	}, nil
}
