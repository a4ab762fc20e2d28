package facematch

import (
	"encoding/json"
	"os"
	"strconv"

	"facegate.io/application/utils"
	"facegate.io/infrastructure/facematch/types"
	"facegate.io/infrastructure/logger"
	"facegate.io/infrastructure/network"
)

type FaceAPI struct {
	Network *network.NetworkController
}

func (f *FaceAPI) EncodeFace(image *string) (*types.FaceEncodingResponse, error) {
	requestBody := types.FaceEncodingRequest{
		Image: image,
	}

	response, statusCode, err := f.Network.Post("/encode-face", &map[string]string{}, requestBody, nil, false, nil)
	if err != nil {
		logger.Error("error encoding face", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	if statusCode == nil || *statusCode != 200 {
		logger.Error("face encoding failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return &types.FaceEncodingResponse{
			Success: false,
			Error:   utils.GetStringPointer("Face encoding failed"),
		}, nil
	}

	var result types.FaceEncodingResponse
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling face encoding response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	return &result, nil
}

func (f *FaceAPI) MatchFace(probe []float64, candidates []types.CandidateEncoding) (*types.FaceMatchResponse, error) {
	tolerance := 0.6
	if raw := os.Getenv("FACE_MATCH_TOLERANCE"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			tolerance = parsed
		}
	}
	requestBody := types.FaceMatchRequest{
		Probe:      probe,
		Candidates: candidates,
		Tolerance:  tolerance,
	}

	response, statusCode, err := f.Network.Post("/match-face", &map[string]string{}, requestBody, nil, false, nil)
	if err != nil {
		logger.Error("error matching face", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	if statusCode == nil || *statusCode != 200 {
		logger.Error("face match failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return &types.FaceMatchResponse{
			Success: false,
			Error:   utils.GetStringPointer("Face match failed"),
		}, nil
	}

	var result types.FaceMatchResponse
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling face match response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	return &result, nil
}
