package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// ErrStaleRecord is returned by conditional updates that matched no row:
// the record changed (or its guard flipped) after it was read.
var ErrStaleRecord = errors.New("record changed since it was read")

// Document number prefixes.
const (
	PrefixLead         = "LI"
	PrefixEnquiry      = "EQ"
	PrefixQuote        = "QT"
	PrefixProforma     = "PI"
	PrefixSalesOrder   = "SO"
	PrefixSupplierPO   = "PO"
	PrefixShipment     = "SH"
	PrefixSupplierBill = "SB"
	PrefixInvoiceBill  = "IB"
	PrefixSupplier     = "SU"
)

type NumberRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNumberRepository(db *gorm.DB) *NumberRepository {
	return &NumberRepository{db: db, now: time.Now}
}

// Generate returns prefix + YYMMDD + 4 digit sequence. The sequence
// restarts every day and continues from the highest number of the day;
// past 9999 it simply grows a digit.
func (r *NumberRepository) Generate(model interface{}, column, prefix string) (string, error) {
	currentDate := r.now().Format("060102")

	var numbers []string
	err := r.db.Model(model).
		Where(column+" LIKE ?", prefix+currentDate+"%").
		Pluck(column, &numbers).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	last, err := lastSequence(prefix, currentDate, numbers)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%04d", prefix, currentDate, last+1), nil
}

// lastSequence compares sequences numerically so "…10000" sorts after
// "…9999".
func lastSequence(prefix, currentDate string, numbers []string) (int, error) {
	last := 0
	for _, no := range numbers {
		if len(no) < len(prefix)+10 || no[len(prefix):len(prefix)+6] != currentDate {
			continue
		}
		seq, err := strconv.Atoi(no[len(prefix)+6:])
		if err != nil {
			return 0, fmt.Errorf("malformed document number %q: %w", no, err)
		}
		if seq > last {
			last = seq
		}
	}
	return last, nil
}
