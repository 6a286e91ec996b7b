package block

import (
	"strconv"
	"strings"
)

func ParseRange(in string) *Range {
	if in == "" {
		return nil
	}
	ch := strings.Split(in, "-")
	lo, err := strconv.Atoi(ch[0])
	if err != nil {
		panic(err)
	}
	hi, err := strconv.Atoi(ch[1])
	if err != nil {
		panic(err)
	}
	return NewRange(lo, hi)
}

func ParseRanges(in string) (out Ranges) {
	for _, e := range strings.Split(in, ",") {
		newRange := ParseRange(strings.Trim(e, " "))
		if newRange != nil {
			out = append(out, newRange)
		}
	}
	return
}
