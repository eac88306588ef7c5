package controllers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func BoolPointer(b bool) *bool {
	return &b
}

func StrPointer(b string) *string {
	return &b
}

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

// pathID reads the numeric :id path parameter.
func pathID(c echo.Context) (uint, bool) {
	var id uint
	if err := echo.PathParamsBinder(c).Uint("id", &id).BindError(); err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
