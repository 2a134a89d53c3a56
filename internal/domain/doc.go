// Package domain contains the core learning entities of the application:
// vocabulary cards, grammar rules, their shared review state and the
// learner profile. It is independent of storage, transport and AI providers.
//
// Cards and rules both embed ReviewState and implement Reviewable, so the
// scheduler in package srs can order them together without knowing which
// kind of item it is looking at.
package domain
