package dto

import (
	"encoding/json"
	"fmt"
)

const unlimited = "unlimited"

// Remaining is either a number of calls left or unlimited.
type Remaining struct {
	Unlimited bool
	Count     int
}

func UnlimitedRemaining() Remaining {
	return Remaining{Unlimited: true}
}

func LimitedRemaining(n int) Remaining {
	if n < 0 {
		n = 0
	}
	return Remaining{Count: n}
}

func (r Remaining) String() string {
	if r.Unlimited {
		return unlimited
	}
	return fmt.Sprintf("%d", r.Count)
}

func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return json.Marshal(unlimited)
	}
	return json.Marshal(r.Count)
}

func (r *Remaining) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != unlimited {
			return fmt.Errorf("invalid remaining value %q", s)
		}
		*r = UnlimitedRemaining()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = LimitedRemaining(n)
	return nil
}

// QuotaStatus is the result of evaluating a user's quota.
type QuotaStatus struct {
	IsSubscribed bool      `json:"isSubscribed"`
	Allowed      bool      `json:"allowed"`
	Remaining    Remaining `json:"remaining"`
}
