package manifest

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
)

//Generation is the template family selected by the MINOR component of the connector version
type Generation int64

const (
	Generation9  Generation = 9
	Generation10 Generation = 10
	Generation11 Generation = 11
)

type tlsLayout int

const (
	//tlsHostList renders ingress.hosts[] and ingress.tls[] lists
	tlsHostList tlsLayout = iota
	//tlsHostname renders ingress.hostname and an ingress.tls.enabled flag
	tlsHostname
)

type layout struct {
	template string
	tls      tlsLayout
}

var layouts = map[Generation]layout{
	Generation9:  {template: "values-9.yaml", tls: tlsHostList},
	Generation10: {template: "values-10.yaml", tls: tlsHostname},
	Generation11: {template: "values-11.yaml", tls: tlsHostname},
}

func (g Generation) String() string {
	return fmt.Sprintf("%d", int64(g))
}

func Generations() []Generation {
	return []Generation{Generation9, Generation10, Generation11}
}

//GenerationForVersion never falls back to a neighbouring generation
func GenerationForVersion(version string) (Generation, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return 0, &InvalidVersionError{Version: version, err: err}
	}
	gen := Generation(v.Minor)
	if _, ok := layouts[gen]; !ok {
		return 0, &TemplateNotFoundError{Version: version, Generation: v.Minor}
	}
	return gen, nil
}
