package attribution

import "net/url"

// UTM holds campaign tags. Absent or empty parameters are nil.
type UTM struct {
	Source   *string
	Medium   *string
	Campaign *string
}

// ExtractUTM reads utm_source, utm_medium and utm_campaign from the query
// string of a referrer URL. Unparseable referrers yield an empty UTM.
func ExtractUTM(referrer string) UTM {
	if referrer == "" {
		return UTM{}
	}

	u, err := url.Parse(referrer)
	if err != nil {
		return UTM{}
	}
	query := u.Query()

	return UTM{
		Source:   param(query, "utm_source"),
		Medium:   param(query, "utm_medium"),
		Campaign: param(query, "utm_campaign"),
	}
}

func param(query url.Values, key string) *string {
	v := query.Get(key)
	if v == "" {
		return nil
	}
	return &v
}
