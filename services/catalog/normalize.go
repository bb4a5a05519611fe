package catalog

import "cinebase/models"

// maxCastNames caps cast at the provider's top billing.
const maxCastNames = 10

// Normalize maps a raw provider item plus optional detail enrichment into a
// store candidate. Missing details degrade (runtime 0, empty genres/cast)
// rather than fail; required-field validation happens at the store.
func Normalize(raw models.RawItem, details *models.TitleDetails) models.MediaCandidate {
	candidate := models.MediaCandidate{
		TMDBID:       raw.ID,
		MediaType:    raw.Kind,
		Overview:     raw.Overview,
		PosterPath:   raw.PosterPath,
		BackdropPath: raw.BackdropPath,
		VoteAverage:  raw.VoteAverage.String(),
		Genres:       []string{},
		Cast:         []string{},
	}

	switch raw.Kind {
	case models.KindSeries:
		candidate.Title = raw.Name
		candidate.ReleaseDate = raw.FirstAirDate
	default:
		candidate.Title = raw.Title
		candidate.ReleaseDate = raw.ReleaseDate
	}

	if candidate.VoteAverage == "" {
		candidate.VoteAverage = "0"
	}

	if details == nil {
		return candidate
	}

	candidate.Runtime = details.Runtime
	if raw.Kind == models.KindSeries && candidate.Runtime == 0 && len(details.EpisodeRunTime) > 0 {
		candidate.Runtime = details.EpisodeRunTime[0]
	}
	for _, g := range details.Genres {
		candidate.Genres = append(candidate.Genres, g.Name)
	}
	cast := details.Credits.Cast
	if len(cast) > maxCastNames {
		cast = cast[:maxCastNames]
	}
	for _, c := range cast {
		candidate.Cast = append(candidate.Cast, c.Name)
	}
	return candidate
}
