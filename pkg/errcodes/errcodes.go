package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	InvalidPaging       failure.ErrorCode = "InvalidPaging"
	InvalidPropertyID   failure.ErrorCode = "InvalidPropertyID"
	InvalidPredictionID failure.ErrorCode = "InvalidPredictionID"
	InvalidFeatures     failure.ErrorCode = "InvalidFeatures"
	InvalidNeighborhood failure.ErrorCode = "InvalidNeighborhood"
	InvalidSalePrice    failure.ErrorCode = "InvalidSalePrice"

	PropertyNotFound     failure.ErrorCode = "PropertyNotFound"
	PredictionNotFound   failure.ErrorCode = "PredictionNotFound"
	NeighborhoodNotFound failure.ErrorCode = "NeighborhoodNotFound"

	ModelNotReady       failure.ErrorCode = "ModelNotReady"
	ModelArtifactBroken failure.ErrorCode = "ModelArtifactBroken"

	DatasetUnreadable failure.ErrorCode = "DatasetUnreadable"
	DatasetEmpty      failure.ErrorCode = "DatasetEmpty"
)
