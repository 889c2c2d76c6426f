package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestAlignRangeHourly(t *testing.T) {
    from := time.Date(2024, 10, 10, 9, 42, 13, 0, time.UTC)
    to := time.Date(2024, 10, 10, 10, 42, 13, 0, time.UTC)
    gotFrom, gotTo := AlignRange(from, to, "hourly")
    if gotFrom.Minute() != 0 || gotFrom.Second() != 0 {
        t.Fatalf("from not aligned: %v", gotFrom)
    }
    if gotTo.Sub(gotFrom) != time.Hour {
        t.Fatalf("unexpected span %v", gotTo.Sub(gotFrom))
    }
}

func TestAlignRangeDaily(t *testing.T) {
    from := time.Date(2024, 10, 9, 8, 0, 1, 0, time.UTC)
    to := time.Date(2024, 10, 10, 8, 0, 1, 0, time.UTC)
    gotFrom, gotTo := AlignRange(from, to, "daily")
    if gotFrom.Hour() != 0 || gotTo.Hour() != 0 {
        t.Fatalf("boundaries not aligned: %v %v", gotFrom, gotTo)
    }
}
