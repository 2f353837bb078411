package domain

import "slices"

// Icon is a key into the fixed icon set.
type Icon string

const (
	IconBook      Icon = "book"
	IconHeart     Icon = "heart"
	IconStar      Icon = "star"
	IconSun       Icon = "sun"
	IconMoon      Icon = "moon"
	IconCloud     Icon = "cloud"
	IconCoffee    Icon = "coffee"
	IconMusic     Icon = "music"
	IconCamera    Icon = "camera"
	IconPlane     Icon = "plane"
	IconBriefcase Icon = "briefcase"
	IconLightbulb Icon = "lightbulb"
	IconHome      Icon = "home"
	IconFlag      Icon = "flag"
)

// IconInfo pairs an icon key with its display label.
type IconInfo struct {
	Key   Icon   `json:"key"`
	Label string `json:"label"`
}

var icons = []IconInfo{
	{IconBook, "Book"},
	{IconHeart, "Heart"},
	{IconStar, "Star"},
	{IconSun, "Sun"},
	{IconMoon, "Moon"},
	{IconCloud, "Cloud"},
	{IconCoffee, "Coffee"},
	{IconMusic, "Music"},
	{IconCamera, "Camera"},
	{IconPlane, "Travel"},
	{IconBriefcase, "Work"},
	{IconLightbulb, "Idea"},
	{IconHome, "Home"},
	{IconFlag, "Milestone"},
}

// Icons returns the icon set in display order.
func Icons() []IconInfo {
	return slices.Clone(icons)
}

// Valid reports whether i belongs to the icon set.
func (i Icon) Valid() bool {
	return slices.ContainsFunc(icons, func(info IconInfo) bool { return info.Key == i })
}

// Label returns the display label, or the raw key if i is unknown.
func (i Icon) Label() string {
	for _, info := range icons {
		if info.Key == i {
			return info.Label
		}
	}
	return string(i)
}

// IconSet is the icon catalogue plus the icons currently used by entries.
type IconSet struct {
	Icons []IconInfo `json:"icons"`
	Used  []Icon     `json:"used"`
}
