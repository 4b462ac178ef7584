package responses

import (
	"net/http"

	"currycrave/internal/structs"
)

const (
	SuccessCode      = http.StatusOK
	BadRequestCode   = http.StatusBadRequest
	UnauthorizedCode = http.StatusUnauthorized
	ForbiddenCode    = http.StatusForbidden
	NotFoundCode     = http.StatusNotFound
	ConflictCode     = http.StatusConflict
	InternalErrCode  = http.StatusInternalServerError
)

var (
	Success = structs.Response{
		Code:    SuccessCode,
		Message: "success",
	}
	BadRequest = structs.Response{
		Code:    BadRequestCode,
		Message: "bad request",
	}
	InvalidPincode = structs.Response{
		Code:    BadRequestCode,
		Message: "Please provide a valid 6-digit pincode",
	}
	InvalidRadius = structs.Response{
		Code:    BadRequestCode,
		Message: "Delivery radius must be between 1 and 100 KM",
	}
	Unauthorized = structs.Response{
		Code:    UnauthorizedCode,
		Message: "unauthorized",
	}
	Forbidden = structs.Response{
		Code:    ForbiddenCode,
		Message: "admin access required",
	}
	NotFound = structs.Response{
		Code:    NotFoundCode,
		Message: "not found",
	}
	Conflict = structs.Response{
		Code:    ConflictCode,
		Message: "settings were changed by someone else, reload and retry",
	}
	TooManyLocations = structs.Response{
		Code:    BadRequestCode,
		Message: "Maximum 20 restaurant locations allowed. Please remove one first.",
	}
	LocationNotFound = structs.Response{
		Code:    NotFoundCode,
		Message: "Restaurant location not found",
	}
	PincodeNotFound = structs.Response{
		Code:    NotFoundCode,
		Message: "Pincode not found",
	}
	RestaurantUnresolved = structs.Response{
		Code:    InternalErrCode,
		Message: "Restaurant location not configured properly",
	}
	Misconfigured = structs.Response{
		Code:    InternalErrCode,
		Message: "No restaurant locations configured. Please contact the restaurant.",
	}
	InternalErr = structs.Response{
		Code:    InternalErrCode,
		Message: "internal error",
	}
)
