package cvss

import (
	"testing"
)

type scoreTestcase struct {
	Vector string
	Score  float64
}

// RunScores is a test helper to ensure that the score calculation is correct
// for a set of vectors.
func runScores(t *testing.T, ver Version, tcs []scoreTestcase) {
	t.Helper()
	for _, tc := range tcs {
		t.Run("", func(t *testing.T) {
			t.Helper()
			t.Log(tc.Vector)
			v, err := Parse(ver, tc.Vector)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			s, err := Calculate(v)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got, want := s.Base, tc.Score; got != want {
				t.Errorf("got: %4.1f, want: %4.1f", got, want)
			} else {
				t.Logf("🆗\t%4.1f %v (impact %.1f, exploitability %.1f)",
					tc.Score, Classify(ver, s.Base), s.Impact, s.Exploitability)
			}
		})
	}
}

func TestScore(t *testing.T) {
	t.Run("2.0", func(t *testing.T) {
		tcs := []scoreTestcase{
			{Vector: "AV:N/AC:L/Au:N/C:N/I:N/A:C", Score: 7.8},  // CVE-2002-0392
			{Vector: "AV:N/AC:L/Au:N/C:C/I:C/A:C", Score: 10.0}, // CVE-2003-0818
			{Vector: "AV:L/AC:H/Au:N/C:C/I:C/A:C", Score: 6.2},  // CVE-2003-0062
			{Vector: "AV:N/AC:M/Au:N/C:P/I:P/A:P", Score: 6.8},
			{Vector: "AV:N/AC:L/Au:N/C:P/I:P/A:P", Score: 7.5},
			{Vector: "AV:N/AC:M/Au:N/C:N/I:P/A:N", Score: 4.3},
			{Vector: "AV:N/AC:L/Au:N/C:P/I:N/A:N", Score: 5.0},
			{Vector: "AV:L/AC:L/Au:N/C:C/I:C/A:C", Score: 7.2},
			{Vector: "AV:N/AC:L/Au:N/C:N/I:N/A:N", Score: 0.0},
		}
		runScores(t, V2, tcs)
	})
	t.Run("3.0", func(t *testing.T) {
		tcs := []scoreTestcase{
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:R/S:C/C:L/I:L/A:N", Score: 6.1}, // CVE-2013-1937
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:L/UI:N/S:C/C:L/I:L/A:N", Score: 6.4}, // CVE-2013-0375
			{Vector: "CVSS:3.0/AV:N/AC:H/PR:N/UI:R/S:U/C:L/I:N/A:N", Score: 3.1}, // CVE-2014-3566
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:L/UI:N/S:C/C:H/I:H/A:H", Score: 9.9}, // CVE-2012-1516
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:H/UI:N/S:U/C:H/I:H/A:H", Score: 7.2}, // CVE-2012-0384
			{Vector: "CVSS:3.0/AV:L/AC:L/PR:N/UI:R/S:U/C:H/I:H/A:H", Score: 7.8}, // CVE-2015-1098
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N", Score: 7.5}, // CVE-2014-0160
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", Score: 9.8}, // CVE-2014-6271
			{Vector: "CVSS:3.0/AV:N/AC:H/PR:N/UI:N/S:C/C:N/I:H/A:N", Score: 6.8}, // CVE-2008-1447
			{Vector: "CVSS:3.0/AV:P/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", Score: 6.8}, // CVE-2014-2005
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:C/C:L/I:N/A:N", Score: 5.8}, // CVE-2010-0467
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:C/C:N/I:L/A:N", Score: 5.8}, // CVE-2012-1342
			{Vector: "CVSS:3.0/AV:A/AC:L/PR:N/UI:N/S:C/C:H/I:N/A:H", Score: 9.3}, // CVE-2013-6014
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:L/UI:R/S:C/C:H/I:H/A:H", Score: 9.0}, // CVE-2019-7551
			{Vector: "CVSS:3.0/AV:A/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", Score: 8.8}, // CVE-2011-1265
			{Vector: "CVSS:3.0/AV:P/AC:L/PR:N/UI:N/S:U/C:N/I:H/A:N", Score: 4.6}, // CVE-2014-2019
			{Vector: "CVSS:3.0/AV:N/AC:H/PR:N/UI:N/S:U/C:H/I:H/A:N", Score: 7.4}, // CVE-2014-0224
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:R/S:C/C:H/I:H/A:H", Score: 9.6}, // CVE-2012-5376
			{Vector: "CVSS:3.0/AV:N/AC:H/PR:N/UI:R/S:U/C:H/I:H/A:N", Score: 6.8}, // CVE-2016-0128
			{Vector: "CVSS:3.0/AV:N/AC:H/PR:N/UI:R/S:U/C:H/I:H/A:H", Score: 7.5}, // CVE-2016-2118
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:L/A:L", Score: 8.6}, // CVE-2016-5558
			{Vector: "CVSS:3.0/AV:L/AC:L/PR:H/UI:N/S:C/C:H/I:H/A:H", Score: 8.2}, // CVE-2016-5729
			{Vector: "CVSS:3.0/AV:L/AC:L/PR:H/UI:N/S:U/C:N/I:H/A:H", Score: 6.0}, // CVE-2015-2890
			{Vector: "CVSS:3.0/AV:P/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", Score: 7.6}, // CVE-2018-3652
			{Vector: "CVSS:3.0/AV:N/AC:H/PR:N/UI:R/S:U/C:L/I:L/A:N", Score: 4.2}, // CVE-2019-0884 (Edge)
			{Vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", Score: 10},  // Scope changed, capped
		}
		runScores(t, V30, tcs)
	})
	t.Run("3.1", func(t *testing.T) {
		tcs := []scoreTestcase{
			{Vector: "CVSS:3.1/AV:P/AC:H/PR:H/UI:R/S:U/C:N/I:N/A:N", Score: 0}, // Zero metrics
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:L/UI:R/S:U/C:N/I:N/A:N", Score: 0}, // Zero metrics
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:N/I:N/A:N", Score: 0}, // Zero metrics, negative impact

			{Vector: "CVSS:3.1/AV:N/AC:L/PR:L/UI:N/S:C/C:L/I:L/A:N", Score: 6.4}, // CVE-2013-0375
			{Vector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:R/S:U/C:L/I:N/A:N", Score: 3.1}, // CVE-2014-3566
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:L/UI:N/S:C/C:H/I:H/A:H", Score: 9.9}, // CVE-2012-1516
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:H/I:H/A:H", Score: 7.2}, // CVE-2012-0384
			{Vector: "CVSS:3.1/AV:L/AC:L/PR:N/UI:R/S:U/C:H/I:H/A:H", Score: 7.8}, // CVE-2015-1098
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N", Score: 7.5}, // CVE-2014-0160
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", Score: 9.8}, // CVE-2014-6271
			{Vector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:N/S:C/C:N/I:H/A:N", Score: 6.8}, // CVE-2008-1447
			{Vector: "CVSS:3.1/AV:P/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", Score: 6.8}, // CVE-2014-2005
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:L/I:N/A:N", Score: 5.8}, // CVE-2010-0467
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:N/I:L/A:N", Score: 5.8}, // CVE-2012-1342
			{Vector: "CVSS:3.1/AV:A/AC:L/PR:N/UI:N/S:C/C:H/I:N/A:H", Score: 9.3}, // CVE-2013-6014
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:L/UI:R/S:C/C:H/I:H/A:H", Score: 9.0}, // CVE-2019-7551
			{Vector: "CVSS:3.1/AV:A/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", Score: 8.8}, // CVE-2011-1265
			{Vector: "CVSS:3.1/AV:P/AC:L/PR:N/UI:N/S:U/C:N/I:H/A:N", Score: 4.6}, // CVE-2014-2019
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:R/S:U/C:H/I:H/A:H", Score: 8.8}, // CVE-2015-0970
			{Vector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:N/S:U/C:H/I:H/A:N", Score: 7.4}, // CVE-2014-0224
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:R/S:C/C:H/I:H/A:H", Score: 9.6}, // CVE-2012-5376
			{Vector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:R/S:U/C:H/I:H/A:N", Score: 6.8}, // CVE-2016-0128
			{Vector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:R/S:U/C:H/I:H/A:H", Score: 7.5}, // CVE-2016-2118
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:R/S:C/C:L/I:L/A:N", Score: 6.1}, // CVE-2017-5942
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:L/A:L", Score: 8.6}, // CVE-2016-5558
			{Vector: "CVSS:3.1/AV:L/AC:L/PR:H/UI:N/S:C/C:H/I:H/A:H", Score: 8.2}, // CVE-2016-5729
			{Vector: "CVSS:3.1/AV:L/AC:L/PR:H/UI:N/S:U/C:N/I:H/A:H", Score: 6.0}, // CVE-2015-2890
			{Vector: "CVSS:3.1/AV:P/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", Score: 7.6}, // CVE-2018-3652
			{Vector: "CVSS:3.1/AV:N/AC:H/PR:N/UI:R/S:U/C:L/I:L/A:N", Score: 4.2}, // CVE-2019-0884 (Edge)
			{Vector: "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:L/I:L/A:N", Score: 3.8}, // Specification example, base only
		}
		runScores(t, V31, tcs)
	})
}

func TestSubscores(t *testing.T) {
	tcs := []struct {
		Version        Version
		Vector         string
		Impact         float64
		Exploitability float64
	}{
		{V31, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", 5.9, 3.9},
		{V31, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", 6.0, 3.9},
		{V31, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:N/I:N/A:N", 0, 3.9},
		{V31, "CVSS:3.1/AV:P/AC:H/PR:H/UI:R/S:U/C:N/I:N/A:N", 0, 0.1},
		{V2, "AV:N/AC:L/Au:N/C:C/I:C/A:C", 10.0, 10.0},
		{V2, "AV:N/AC:L/Au:N/C:N/I:N/A:C", 6.9, 10.0},
		{V2, "AV:L/AC:H/Au:N/C:C/I:C/A:C", 10.0, 1.9},
	}
	for _, tc := range tcs {
		v, err := Parse(tc.Version, tc.Vector)
		if err != nil {
			t.Fatal(err)
		}
		s, err := Calculate(v)
		if err != nil {
			t.Fatal(err)
		}
		if s.Impact != tc.Impact || s.Exploitability != tc.Exploitability {
			t.Errorf("%s: got: (%.1f, %.1f), want: (%.1f, %.1f)",
				tc.Vector, s.Impact, s.Exploitability, tc.Impact, tc.Exploitability)
		}
	}
}

func TestRoundup(t *testing.T) {
	t.Run("3.1", func(t *testing.T) {
		tcs := []struct {
			In, Want float64
		}{
			{4.0, 4.0},
			{4.000000000000001, 4.0}, // Binary floating point artifact.
			{3.9999999999999996, 4.0},
			{4.00001, 4.1},
			{4.02, 4.1},
			{4.1, 4.1},
			{0, 0},
			{0.01, 0.1},
			{9.7602, 9.8},
			{10, 10},
			{2.45, 2.5},
		}
		for _, tc := range tcs {
			if got := Roundup31(tc.In); got != tc.Want {
				t.Errorf("Roundup31(%v): got: %v, want: %v", tc.In, got, tc.Want)
			}
		}
	})
	t.Run("3.0", func(t *testing.T) {
		tcs := []struct {
			In, Want float64
		}{
			{4.0, 4.0},
			{4.02, 4.1},
			{9.7602, 9.8},
			{10, 10},
		}
		for _, tc := range tcs {
			if got := Roundup30(tc.In); got != tc.Want {
				t.Errorf("Roundup30(%v): got: %v, want: %v", tc.In, got, tc.Want)
			}
		}
	})
	t.Run("Round1", func(t *testing.T) {
		tcs := []struct {
			In, Want float64
		}{
			{0.25, 0.3},
			{0.24, 0.2},
			{9.995, 10.0},
			{6.85, 6.9},
			{0, 0},
		}
		for _, tc := range tcs {
			if got := Round1(tc.In); got != tc.Want {
				t.Errorf("Round1(%v): got: %v, want: %v", tc.In, got, tc.Want)
			}
		}
	})
}

func TestDeterminism(t *testing.T) {
	for _, ver := range []Version{V2, V30, V31} {
		for _, v := range allVectors(t, ver) {
			a, err := Score(v)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Score(v)
			if err != nil {
				t.Fatal(err)
			}
			if a != b {
				t.Errorf("%v: results differ: %+v != %+v", v, a, b)
			}
		}
	}
}

// TestMonotonic checks that raising any of the C/I/A metrics never lowers the
// Base score.
func TestMonotonic(t *testing.T) {
	order := map[Value]int{'N': 0, 'L': 1, 'H': 2}
	for _, ver := range []Version{V30, V31} {
		t.Run(ver.String(), func(t *testing.T) {
			for _, v := range allVectors(t, ver) {
				base, err := Calculate(v)
				if err != nil {
					t.Fatal(err)
				}
				for _, m := range []Metric{Confidentiality, Integrity, Availability} {
					cur := v.Get(m)
					for next, n := range order {
						if n <= order[cur] {
							continue
						}
						up := v
						if err := up.Set(m, next); err != nil {
							t.Fatal(err)
						}
						s, err := Calculate(up)
						if err != nil {
							t.Fatal(err)
						}
						if s.Base < base.Base {
							t.Errorf("%v (%.1f) -> %v (%.1f): score decreased", v, base.Base, up, s.Base)
						}
					}
				}
			}
		})
	}
}

// TestBoundary checks scores whose un-rounded value sits on or just under a
// multiple of 0.1.
func TestBoundary(t *testing.T) {
	tcs := []struct {
		Vector string
		Base   float64
	}{
		// Changed scope, 1.08*(Impact+Exploitability) is over 10 and clamped to
		// exactly 10.
		{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:H/A:H", Base: 10},
		{Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:C/C:N/I:H/A:H", Base: 10},
		// 5.2999959717...
		{Vector: "CVSS:3.1/AV:P/AC:L/PR:N/UI:N/S:C/C:H/I:N/A:N", Base: 5.3},
		{Vector: "CVSS:3.1/AV:P/AC:L/PR:N/UI:N/S:C/C:N/I:N/A:H", Base: 5.3},
		// 7.1997575423...
		{Vector: "CVSS:3.1/AV:A/AC:H/PR:H/UI:R/S:C/C:H/I:H/A:L", Base: 7.2},
	}
	for _, tc := range tcs {
		v, err := Parse(V31, tc.Vector)
		if err != nil {
			t.Fatal(err)
		}
		s, err := Calculate(v)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := s.Base, tc.Base; got != want {
			t.Errorf("%s: got: %v, want: %v", tc.Vector, got, want)
		}
	}

	// Sums that are a tenth in decimal but not in binary.
	for _, tc := range []struct {
		In, Want float64
	}{
		{In: 0.30000000000000004, Want: 0.3},
		{In: 4.000000000000001, Want: 4.0},
		{In: 5.299999999999999, Want: 5.3},
		{In: 4.02, Want: 4.1},
	} {
		if got := Roundup31(tc.In); got != tc.Want {
			t.Errorf("Roundup31(%v): got: %v, want: %v", tc.In, got, tc.Want)
		}
	}
}

// TestV30Rounding checks that the v3.0 and v3.1 roundup functions agree on
// every complete vector; the v3.1 change only matters for sums the base
// metrics never produce.
func TestV30Rounding(t *testing.T) {
	for _, v := range allVectors(t, V30) {
		v30, err := Calculate(v)
		if err != nil {
			t.Fatal(err)
		}
		v31 := Vector{ver: V31, mv: v.mv}
		want, err := Calculate(v31)
		if err != nil {
			t.Fatal(err)
		}
		if v30.Base != want.Base {
			t.Errorf("%v: got: %v, want: %v", v, v30.Base, want.Base)
		}
	}
}
