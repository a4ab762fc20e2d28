package network

import (
	"fmt"
	"time"

	"facegate.io/infrastructure/logger"
	"github.com/imroc/req"
)

type NetworkController struct {
	BaseUrl string
}

func (nc *NetworkController) Post(path string, headers *map[string]string, body any, queries *map[string]string, stream bool, timeout *time.Duration) (*[]byte, *int, error) {
	if timeout != nil {
		req.SetTimeout(*timeout)
	} else {
		req.SetTimeout(1 * time.Minute)
	}
	reqHeaders := req.Header{}
	if headers != nil {
		for key, value := range *headers {
			reqHeaders[key] = value
		}
	}
	reqQueries := req.QueryParam{}
	if queries != nil {
		for key, value := range *queries {
			reqQueries[key] = value
		}
	}
	response, err := req.Post(fmt.Sprintf("%s%s", nc.BaseUrl, path), reqHeaders, reqQueries, req.BodyJSON(body))
	if err != nil {
		logger.Error("network request failed", logger.LoggerOptions{
			Key:  "url",
			Data: fmt.Sprintf("%s%s", nc.BaseUrl, path),
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, nil, err
	}
	statusCode := response.Response().StatusCode
	payload, err := response.ToBytes()
	if err != nil {
		return nil, &statusCode, err
	}
	return &payload, &statusCode, nil
}

func (nc *NetworkController) Get(path string, headers *map[string]string, queries *map[string]string) (*[]byte, *int, error) {
	req.SetTimeout(1 * time.Minute)
	reqHeaders := req.Header{}
	if headers != nil {
		for key, value := range *headers {
			reqHeaders[key] = value
		}
	}
	reqQueries := req.QueryParam{}
	if queries != nil {
		for key, value := range *queries {
			reqQueries[key] = value
		}
	}
	response, err := req.Get(fmt.Sprintf("%s%s", nc.BaseUrl, path), reqHeaders, reqQueries)
	if err != nil {
		logger.Error("network request failed", logger.LoggerOptions{
			Key:  "url",
			Data: fmt.Sprintf("%s%s", nc.BaseUrl, path),
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, nil, err
	}
	statusCode := response.Response().StatusCode
	payload, err := response.ToBytes()
	if err != nil {
		return nil, &statusCode, err
	}
	return &payload, &statusCode, nil
}
