package mongo

import "net/url"

// redactURI hides the password of a connection string before it is logged.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "mongodb://<unparseable>"
	}
	return u.Redacted()
}
