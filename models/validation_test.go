package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	name, err := ValidateName("name", "  Alice Wong  ", 100)
	require.NoError(t, err)
	require.Equal(t, "Alice Wong", name)

	_, err = ValidateName("name", "A", 100)
	require.Error(t, err)

	_, err = ValidateName("name", "   ", 100)
	require.Error(t, err)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = ValidateName("name", string(long), 100)
	require.Error(t, err)
}

func TestValidatePhone(t *testing.T) {
	require.NoError(t, ValidatePhone("+66 (2) 123-4567"))
	require.NoError(t, ValidatePhone("0812345"))

	require.Error(t, ValidatePhone("123456"))             // too short
	require.Error(t, ValidatePhone("+++ ---"))            // no digit
	require.Error(t, ValidatePhone("081-234-5678 ext 9")) // letters
	require.Error(t, ValidatePhone("123456789012345678901"))
}

func TestValidateMonthYear(t *testing.T) {
	require.NoError(t, ValidateMonthYear(1, 2020))
	require.NoError(t, ValidateMonthYear(12, 2030))
	require.Error(t, ValidateMonthYear(0, 2025))
	require.Error(t, ValidateMonthYear(13, 2025))
	require.Error(t, ValidateMonthYear(6, 2019))
	require.Error(t, ValidateMonthYear(6, 2031))
}

func TestValidateTargets(t *testing.T) {
	require.NoError(t, ValidateMeetupTarget(0))
	require.NoError(t, ValidateMeetupTarget(1000))
	require.Error(t, ValidateMeetupTarget(-1))
	require.Error(t, ValidateMeetupTarget(1001))

	require.NoError(t, ValidateSalesTarget(0))
	require.NoError(t, ValidateSalesTarget(1_000_000))
	require.Error(t, ValidateSalesTarget(-0.01))
	require.Error(t, ValidateSalesTarget(1_000_000.01))
}

func TestValidateRecordValues(t *testing.T) {
	require.NoError(t, ValidateMeetupValue(1))
	require.NoError(t, ValidateMeetupValue(100))
	require.Error(t, ValidateMeetupValue(0))
	require.Error(t, ValidateMeetupValue(101))

	require.NoError(t, ValidateSaleValue(0.01))
	require.NoError(t, ValidateSaleValue(100_000))
	require.Error(t, ValidateSaleValue(0))
	require.Error(t, ValidateSaleValue(100_000.01))
}

func TestValidatePhotoLink(t *testing.T) {
	require.NoError(t, ValidatePhotoLink("https://cdn.example.com/meetups/2025/06/a.jpg"))
	require.NoError(t, ValidatePhotoLink("http://cdn.example.com/a.jpg"))
	require.Error(t, ValidatePhotoLink("ftp://cdn.example.com/a.jpg"))
	require.Error(t, ValidatePhotoLink(""))

	long := "https://cdn.example.com/"
	for len(long) <= MaxPhotoLinkLen {
		long += "x"
	}
	require.Error(t, ValidatePhotoLink(long))
}

func TestValidateNotFuture(t *testing.T) {
	require.NoError(t, ValidateNotFuture("record_date", time.Now().Add(-time.Hour)))
	require.Error(t, ValidateNotFuture("record_date", time.Now().Add(24*time.Hour)))
}

func TestUserValidateTrimsFields(t *testing.T) {
	u := User{
		UserID:      42,
		Name:        "  Alice  ",
		Nationality: " Thai ",
		Phone:       " 0812345678 ",
		Upline:      "  Bob  ",
	}
	require.NoError(t, u.Validate())
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, "Thai", u.Nationality)
	require.Equal(t, "0812345678", u.Phone)
	require.Equal(t, "Bob", u.Upline)
}

func TestKPIRecordValidateRejectsFractionalMeetup(t *testing.T) {
	rec := KPIRecord{
		UserID:         42,
		RecordType:     RecordTypeMeetup,
		Value:          2.5,
		PhotoLink:      "https://cdn.example.com/a.jpg",
		RecordDate:     time.Now(),
		SubmissionDate: time.Now(),
	}
	require.Error(t, rec.Validate())

	rec.Value = 3
	require.NoError(t, rec.Validate())
}
