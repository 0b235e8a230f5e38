package criteria

import (
	"github.com/toolgate/toolgate/service/dao"
)

// Match evaluates list parameters against a named field value. Parameters
// with other names are ignored so that DAOs can share a parameter list.
func Match(name, actual string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter.Name != name {
			continue
		}
		switch expect := parameter.Value.(type) {
		case string:
			if actual != expect {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range expect {
				if actual == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

// FilterByStatus matches the Status parameter, if present.
func FilterByStatus(status string, parameters []*dao.Parameter) bool {
	return Match("Status", status, parameters)
}

// FilterByUser matches the UserID parameter, if present.
func FilterByUser(userID string, parameters []*dao.Parameter) bool {
	return Match("UserID", userID, parameters)
}
