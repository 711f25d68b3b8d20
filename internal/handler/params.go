package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func collectionID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("cid"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}
	return uint(id), nil
}

func ticketRef(c echo.Context) (uint, uint64, error) {
	cid, err := collectionID(c)
	if err != nil {
		return 0, 0, err
	}
	tid, err := strconv.ParseUint(c.Param("tid"), 10, 64)
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid ticket id")
	}
	return cid, tid, nil
}
