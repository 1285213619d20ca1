package strategy

import "rate_bot/internal/models"

const defaultProbability = 0.5

type situation struct {
	in Input
	th Thresholds
	p  Params
}

func (s situation) withinRiskLevel() bool { return s.in.DV01 <= s.th.RiskLevel }

func (s situation) betweenLimits() bool {
	return s.th.RiskLevel < s.in.DV01 && s.in.DV01 < s.th.MaxRisk
}

func (s situation) overMaxRisk() bool { return s.in.DV01 >= s.th.MaxRisk }

// above reports marketRate > (1+f)*avgRate.
func (s situation) above(f float64) bool { return s.in.MarketRate > (1+f)*s.in.AvgRate }

// below reports marketRate < (1-f)*avgRate.
func (s situation) below(f float64) bool { return s.in.MarketRate < (1-f)*s.in.AvgRate }

func (s situation) is(d models.RiskDirection) bool { return s.in.Direction == d }

type rule struct {
	name     string
	when     func(s situation) bool
	pReceive func(p Params) float64
}

// rules are evaluated top to bottom and are not exclusive: every match
// overwrites the receive probability, so the order is the policy.
var rules = []rule{
	{
		name:     "1:low-risk/rate-above",
		when:     func(s situation) bool { return s.withinRiskLevel() && s.above(s.p.XFactor) },
		pReceive: func(p Params) float64 { return p.P1 },
	},
	{
		name:     "2:low-risk/rate-below",
		when:     func(s situation) bool { return s.withinRiskLevel() && s.below(s.p.XFactor) },
		pReceive: func(p Params) float64 { return 1 - p.P1 },
	},
	{
		name: "3a:receiver/rate-below",
		when: func(s situation) bool {
			return s.betweenLimits() && s.is(models.RiskDirectionReceiver) && s.below(s.p.YFactor)
		},
		pReceive: func(p Params) float64 { return 1 - p.P2 },
	},
	{
		name: "3b:receiver/rate-above",
		when: func(s situation) bool {
			return s.betweenLimits() && s.is(models.RiskDirectionReceiver) && s.above(s.p.ZFactor)
		},
		pReceive: func(p Params) float64 { return p.P1 },
	},
	{
		name: "4a:payer/rate-above",
		when: func(s situation) bool {
			return s.betweenLimits() && s.is(models.RiskDirectionPayer) && s.above(s.p.YFactor)
		},
		pReceive: func(p Params) float64 { return p.P2 },
	},
	{
		name: "4b:payer/rate-below",
		when: func(s situation) bool {
			return s.betweenLimits() && s.is(models.RiskDirectionPayer) && s.below(s.p.ZFactor)
		},
		pReceive: func(p Params) float64 { return 1 - p.P1 },
	},
	{
		name:     "5:max-risk/receiver",
		when:     func(s situation) bool { return s.overMaxRisk() && s.is(models.RiskDirectionReceiver) },
		pReceive: func(Params) float64 { return 0 },
	},
	{
		name:     "6:max-risk/payer",
		when:     func(s situation) bool { return s.overMaxRisk() && s.is(models.RiskDirectionPayer) },
		pReceive: func(Params) float64 { return 1 },
	},
	{
		name: "fresh-market",
		when: func(s situation) bool {
			return s.in.MarketRate == 0 && s.in.DV01 == 0 && s.in.AvgRate == 0
		},
		pReceive: func(Params) float64 { return defaultProbability },
	},
}

type Probabilities struct {
	Receive float64
	Pay     float64
}

// Evaluate runs the rule table and returns the probabilities together with
// the name of the last rule that matched.
func Evaluate(in Input, th Thresholds, p Params) (Probabilities, string) {
	s := situation{in: in, th: th, p: p}

	pr := Probabilities{Receive: defaultProbability, Pay: defaultProbability}
	fired := ""
	for _, r := range rules {
		if r.when(s) {
			pr.Receive = r.pReceive(p)
			fired = r.name
		}
	}
	if pr.Receive > 0 {
		pr.Pay = 1 - pr.Receive
	}
	return pr, fired
}

// Choose maps probabilities and a uniform draw in [0,1) to a direction.
// Both probabilities at zero is a deliberate flat signal.
func Choose(pr Probabilities, draw float64) models.RiskDirection {
	if pr.Receive == 0 && pr.Pay == 0 {
		return models.RiskDirectionNone
	}
	if draw < pr.Receive {
		return models.RiskDirectionReceiver
	}
	return models.RiskDirectionPayer
}
