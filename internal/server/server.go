package server

// Server merges the entity-specific HTTP servers into the single surface
// the router registers.
type Server struct {
	PredictionServer
	PropertyServer
	NeighborhoodServer
}

func NewServer(
	predictionServer PredictionServer,
	propertyServer PropertyServer,
	neighborhoodServer NeighborhoodServer,
) Server {
	return Server{
		PredictionServer:   predictionServer,
		PropertyServer:     propertyServer,
		NeighborhoodServer: neighborhoodServer,
	}
}
