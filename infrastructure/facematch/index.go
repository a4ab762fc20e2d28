package facematch

import (
	"os"

	"facegate.io/infrastructure/facematch/types"
	"facegate.io/infrastructure/network"
)

var FaceMatchService types.FaceMatchServiceType

func InitialiseFaceMatchService() {
	FaceMatchService = &FaceAPI{
		Network: &network.NetworkController{
			BaseUrl: os.Getenv("FACE_MATCH_BASE_URL"),
		},
	}
}
