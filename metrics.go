/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topten_rooms_created_total",
		Help: "Number of rooms created since startup.",
	})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topten_rooms_active",
		Help: "Number of currently live rooms.",
	})

	guessesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topten_guesses_total",
		Help: "Number of accepted guesses by outcome.",
	}, []string{"outcome"})

	listFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topten_list_fallbacks_total",
		Help: "Number of room creations that used a fallback item list.",
	})
)
