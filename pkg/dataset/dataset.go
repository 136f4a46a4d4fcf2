// Package dataset holds the RGES-PIT data-flow declarations.
//
// Nothing here is built at import time: Pipelines and Declarations return fresh
// values on every call so callers can build as many graphs as they like.
package dataset

import "github.com/vanderheijden86/pitgraph/pkg/model"

// WorkingGroups of the collaboration, keyed by number.
var WorkingGroups = map[int]model.WorkingGroup{
	1:  {Number: 1, Name: "Leadership and Project Management"},
	2:  {Number: 2, Name: "Education, Outreach, and Community"},
	3:  {Number: 3, Name: "Event Modeling"},
	4:  {Number: 4, Name: "Lens Flux Analysis"},
	5:  {Number: 5, Name: "Event and Anomaly Detection"},
	6:  {Number: 6, Name: "Variable Stars"},
	7:  {Number: 7, Name: "Survey Simulations and Pipeline Validation"},
	8:  {Number: 8, Name: "Contemporaneous and Precursor Observations"},
	9:  {Number: 9, Name: "Data Challenges, Outreach, and Citizen Science"},
	10: {Number: 10, Name: "Microlensing Mini-Courses"},
	11: {Number: 11, Name: "Free Floating Planets"},
	12: {Number: 12, Name: "Efficiency and Occurrence Rate Analysis"},
	13: {Number: 13, Name: "Astrometry"},
	14: {Number: 14, Name: "Global Pipeline"},
}

// PipelineSet names every pipeline referenced by the declarations.
type PipelineSet struct {
	EventModeling            *model.Pipeline
	LensFluxAnalysis         *model.Pipeline
	DifferenceImageAnalysis  *model.Pipeline
	EventAndAnomalyDetection *model.Pipeline
	VariableStars            *model.Pipeline
	SurveySimulations        *model.Pipeline
	PrecursorObservations    *model.Pipeline
	DataChallenges           *model.Pipeline
	MiniCourses              *model.Pipeline
	FreeFloatingPlanets      *model.Pipeline
	OccurrenceRates          *model.Pipeline
	Astrometry               *model.Pipeline
	Public                   *model.Pipeline
	MSOSPhotometry           *model.Pipeline
	MSOSModeling             *model.Pipeline
	SOC                      *model.Pipeline
}

// All returns the pipelines in declaration order.
func (p PipelineSet) All() []*model.Pipeline {
	return []*model.Pipeline{
		p.EventModeling,
		p.LensFluxAnalysis,
		p.DifferenceImageAnalysis,
		p.EventAndAnomalyDetection,
		p.VariableStars,
		p.SurveySimulations,
		p.PrecursorObservations,
		p.DataChallenges,
		p.MiniCourses,
		p.FreeFloatingPlanets,
		p.OccurrenceRates,
		p.Astrometry,
		p.Public,
		p.MSOSPhotometry,
		p.MSOSModeling,
		p.SOC,
	}
}

func wgPipeline(name string, number int) *model.Pipeline {
	wg := WorkingGroups[number]
	return &model.Pipeline{Name: name, Kind: model.KindWorkingGroupPipeline, WorkingGroup: &wg}
}

func externalPipeline(name string) *model.Pipeline {
	return &model.Pipeline{Name: name, Kind: model.KindExternalGroupPipeline}
}

// Pipelines returns a fresh set of pipeline declarations.
func Pipelines() PipelineSet {
	return PipelineSet{
		EventModeling:            wgPipeline("Event modeling pipeline", 3),
		LensFluxAnalysis:         wgPipeline("Lens flux analysis pipeline", 4),
		DifferenceImageAnalysis:  wgPipeline("Difference image analysis pipeline", 4),
		EventAndAnomalyDetection: wgPipeline("Event and anomaly detection pipeline", 5),
		VariableStars:            wgPipeline("Variable stars pipeline", 6),
		SurveySimulations:        wgPipeline("Survey simulations and pipeline validation pipeline", 7),
		PrecursorObservations:    wgPipeline("Contemporaneous and precursor observations pipeline", 8),
		DataChallenges:           wgPipeline("Data challenges, outreach, and citizen science pipeline", 9),
		MiniCourses:              wgPipeline("Microlensing mini-courses pipeline", 10),
		FreeFloatingPlanets:      wgPipeline("Free floating planets pipeline", 11),
		OccurrenceRates:          wgPipeline("Efficiency and occurrence rate analysis pipeline", 12),
		Astrometry:               wgPipeline("Astrometry analysis pipeline", 13),
		Public:                   &model.Pipeline{Name: "Public", Kind: model.KindPublic},
		MSOSPhotometry:           externalPipeline("MSOS photometry"),
		MSOSModeling:             externalPipeline("MSOS modeling"),
		SOC:                      externalPipeline("SOC"),
	}
}

func flow(src *model.Pipeline, data model.DataRecord, dst ...*model.Pipeline) model.DataFlowDeclaration {
	return model.DataFlowDeclaration{Source: src, Destinations: dst, Data: data}
}

func named(name string) model.DataRecord {
	return model.DataRecord{Information: model.Information{Name: name}}
}

// Declarations returns the full list of data-flow declarations together with
// the pipeline set they reference.
func Declarations() ([]model.DataFlowDeclaration, PipelineSet) {
	p := Pipelines()
	decls := []model.DataFlowDeclaration{
		flow(p.LensFluxAnalysis, named("Source and Lens position and brightness posteriors"), p.EventModeling),
		flow(p.SurveySimulations, named("Simulated light curves"), p.EventModeling),
		flow(p.EventAndAnomalyDetection, named("New candidate microlensing events and anomalies"),
			p.EventModeling, p.FreeFloatingPlanets),
		flow(p.EventModeling, eventModelsAndLightCurves(), p.OccurrenceRates, p.Public),
		flow(p.PrecursorObservations, precursorData(), p.LensFluxAnalysis),
		flow(p.LensFluxAnalysis, lensFluxFits(), p.Public),
		flow(p.MSOSModeling, named("Automated light curve modeling results"), p.EventModeling, p.OccurrenceRates),
		flow(p.MSOSModeling, named("Single lens events"), p.OccurrenceRates),
		flow(p.VariableStars, named("Variable star models"), p.MSOSPhotometry),
		flow(p.VariableStars, publicProduct("Simulated variable star light curves", ""), p.Public),
		flow(p.SurveySimulations, named("Galaxy models and stellar microlensing occurrence rate predictions"), p.OccurrenceRates),
		flow(p.OccurrenceRates, detectionEfficiencyMaps(), p.Public),
		flow(p.OccurrenceRates, publicProduct("Maps of reliability (false positives)", "Exoplanet Archive",
			"Maps of reliability (false positives). There is considerable uncertainty about the rate of false "+
				"positives that will contaminate the microlensing event detection pipeline and how they will be "+
				"distributed over detection space; the first few seasons will be incredibly informative as to the "+
				"true scale of the different contributions to the total false positive rate.\n"+
				"First season: First constraints on contamination levels from flares and solar system objects\n"+
				"Three seasons: More comprehensive maps of false positive rates over q,s space"), p.Public),
		flow(p.OccurrenceRates, publicProduct("Preliminary mass ratio function", "Exoplanet Archive",
			"After the first three seasons, the vast majority of the microlensing events will not have sufficient "+
				"observational baseline for proper motions to provide lens masses, but mass ratios will be available "+
				"for each event. Three seasons: initial mass ratio function over the range 1e-6 < q < 1e-1."), p.Public),
		flow(p.OccurrenceRates, publicProduct("Occurrence rates", "Exoplanet Archive",
			"The PIT will provide preliminary occurrence rates, including upper limits where appropriate, using the "+
				"above products across a grid of 0.1Me < m < 30MJup and 1 < a < 10 au, assuming an appropriate "+
				"distribution of stellar masses, and assess progress towards meeting the baseline science requirements."), p.Public),
		flow(p.SurveySimulations, named("Simulated images and light curves"), p.DataChallenges),
		flow(p.DataChallenges, publicProduct("Data challenges", ""), p.Public),
		flow(p.DataChallenges, publicProduct("Outreach material (data sonifications, etc.)", ""), p.Public),
		flow(p.MiniCourses, publicProduct("Jupyter Notebooks and lectures", ""), p.Public),
		flow(p.MSOSPhotometry, photometryDataPoints(), p.SOC),
		flow(p.SOC, model.DataRecord{Information: model.Information{
			Name:      "Photometric light curves",
			Unit:      "For each event target and nearby targets",
			Structure: "Table of (x, y, flux/mag, xerr, yerr, magerr, t) for all time steps, all filters, cross-matched across all seasons",
		}}, p.EventModeling, p.Astrometry, p.EventAndAnomalyDetection),
		flow(p.SOC, named("Difference images"), p.DifferenceImageAnalysis),
		flow(p.DifferenceImageAnalysis, named("Difference image analysis"), p.FreeFloatingPlanets),
		flow(p.LensFluxAnalysis, named("Photometric light curves"), p.EventModeling),
		flow(p.Astrometry, jointFit(), p.Public),
		flow(p.MSOSModeling, named("Astrometric estimate data"), p.Astrometry),
		flow(p.FreeFloatingPlanets, freeFloatingPlanetCatalog(), p.Public),
	}
	return decls, p
}

func publicProduct(name, host string, notes ...string) model.DataRecord {
	r := model.DataRecord{Information: model.Information{
		Name:                           name,
		Host:                           host,
		IsOfficialPitPublicDataProduct: true,
	}}
	if len(notes) > 0 {
		r.Notes = notes[0]
	}
	return r
}

func eventModelsAndLightCurves() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:                           "Microlensing event models and light curves",
			IsOfficialPitPublicDataProduct: true,
			Host:                           "MAST",
			TotalDataSize:                  "1.2TB",
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name:               "Table with row for all events",
				Unit:               "~4 viable models per event for all events",
				Frequency:          "After each season",
				Structure:          "Columns with median properties (which properties?) with credible intervals",
				Notes:              "How different types of solutions (1S1L vs 2S1L) to be represented? Perhaps use a relation database instead of a single table?",
				TotalNumberOfUnits: "120,000 rows (~4 viable models per event, 20,000 rows per season, with updates to old models each season)",
				UnitDataSize:       "80B",
				TotalDataSize:      "10MB",
			}},
			{Information: model.Information{
				Name:               "Posteriors",
				Unit:               "~4 viable models per event for all events",
				Frequency:          "After detection of event, and re-run at end of season and end of mission (at least)",
				Latency:            "days (?)",
				Structure:          "(parameter values [which parameters?], likelihood)",
				Format:             "Parquet",
				TotalNumberOfUnits: "120,000 files (~4 viable models per event, 20,000 files per season, with updates to old models each season)",
				UnitDataSize:       "8MB",
				TotalDataSize:      "1TB",
			}},
			{Information: model.Information{
				Name:               "Light curves",
				Unit:               "Per event for all events",
				Frequency:          "After detection of event, and re-run at end of season and end of mission (at least)",
				Latency:            "days (?)",
				Format:             "Parquet",
				TotalNumberOfUnits: "30,000 files (5,000 files per season, with updates to old models each season)",
				UnitDataSize:       "6.6MB",
				TotalDataSize:      "200GB",
			}},
		},
	}
}

func precursorData() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:      "Precursor HST and Euclid data",
			Unit:      "For each field/event",
			Frequency: "One-time catalog prior to first Roman data",
			Notes:     "Calibrated HST images and point source catalogs.\nEuclid image/data hosting policy is TBD.",
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name:      "Images",
				Structure: "Drizzled Reference Image",
				Format:    ".fits",
				Notes:     "Images are hosted and downloadable at SOC/MAST.",
			}},
			{Information: model.Information{
				Name:      "Photometry",
				Structure: "Catalog of calibrated PSF photometry",
				Notes:     "Single-star PSF fit to all detected sources.",
			}},
			{Information: model.Information{
				Name:      "Astrometry",
				Structure: "Catalog of calibrated PSF astrometry",
				Notes:     "Single-star PSF fit to all detected sources.",
			}},
		},
	}
}

func lensFluxFits() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:                           "Lens flux analysis fits",
			Host:                           "MAST",
			IsOfficialPitPublicDataProduct: true,
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name:               "Lens flux analysis best-fit model parameters",
				Unit:               "Per event for all events",
				Frequency:          "After each event",
				Structure:          "23 parameters per row [what parameters?]",
				TotalNumberOfUnits: "30,000 rows (5,000 rows per season, with updates to old models each season)",
				UnitDataSize:       "92B",
				TotalDataSize:      "20MB",
			}},
			{Information: model.Information{
				Name:               "Lens flux analysis model parameter posteriors",
				Unit:               "Per event for all events",
				Frequency:          "After each event",
				Structure:          "23 parameters per row [what parameters?], with 100,000 rows per posterior",
				TotalNumberOfUnits: "30,000 rows (5,000 rows per season, with updates to old models each season)",
				UnitDataSize:       "92B",
				TotalDataSize:      "20MB",
			}},
		},
	}
}

func detectionEfficiencyMaps() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:                           "Maps of detection efficiencies (false negatives)",
			Host:                           "Exoplanet Archive",
			IsOfficialPitPublicDataProduct: true,
			Notes: "MSOS detection efficiencies are not expected to be delivered until the end of the GBTDS, so the " +
				"PIT will provide early-look detection efficiencies at different levels of fidelity, with at least two " +
				"depths: Pixel-level analysis and Flux-level analysis. \n" +
				"In addition, the PIT will develop and deliver additional statistics for detection efficiency maps.\n" +
				"As well as providing early-look detection efficiencies of the simple PSPL case, the PIT will provide " +
				"some preliminary detection efficiencies for cases with higher-order effects, such as limb-darkening " +
				"and multi-planet systems.",
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name:  "Pixel-level analysis",
				Notes: "Shallow but sufficient coverage across event magnitudes to constrain S/N losses between images and light curves.",
			}},
			{Information: model.Information{
				Name:  "Flux-level analysis",
				Notes: "Deep, comprehensive analysis producing maps over q,s space",
			}},
		},
	}
}

func photometryDataPoints() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:      "Photometry data points",
			Unit:      "Per source in input catalog",
			Frequency: "After each Roman image",
			Latency:   "Within 2 days",
			Structure: "Table of (x, y, flux/mag, xerr, yerr, magerr, t) for all time steps, all filters, cross-matched across all seasons",
			Notes: `Initial catalog of sources:<br><ul class="list-disc list-outside px-5">` +
				`<li>Catalog is built with PSF photometry (one product)</li>` +
				`<li>Take one week of data</li>` +
				`<li>~ 700 images</li>` +
				`<li>Averaging, etc.</li>` +
				`<li>Visible sources survive</li>` +
				`<li>There will be the equivalent of the TIC numbers</li>` +
				`<li>Pretty complete down to 25 magnitude</li>` +
				`<li>Catalog is fixed, but update parameters of each source every eight days</li>` +
				`<li>Sources may get added throughout season, then reprocessing at the end of the season for things missed early in the season</li>` +
				`<li>MSOS releases nothing for the first month of the first season</li>` +
				`<li>At 30 days, we get the catalog and we get the light curve for those 30 days</li>` +
				`</ul><br>` +
				`Will not produce the light curves themselves. Will hand these data points off to the SOC every 2 ` +
				`days and expects the SOC to stitch together the light curves and release them. They will also not ` +
				`directly release these data points. This also goes to through the SOC. The SOC is expected to ` +
				`release the data "promptly" after receiving it. Unclear if the SOC intends to make the individual ` +
				`data point tables available or just the resulting light curves after stitching.`,
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name: "PSF photometry data points",
				Notes: "Single star fit to catalog position, single star fit with floating centroid, multiple " +
					"star fit with fixed centroid (week before location)",
			}},
			{Information: model.Information{
				Name: "DIA photometry data points",
				Notes: `<ul class="list-disc list-outside px-5">` +
					`<li>Fixed centroid, and floating centroid</li>` +
					`<li>Against 8 day stack from first week of season (challenges here: proper motion over` +
					` season, if the thing was already changing during stack [long duration event], bad DIA)</li>` +
					`</ul>`,
			}},
		},
	}
}

func jointFit() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:  "Joint photometric and astrometric fit of model",
			Unit:  "For each event",
			Notes: "Containing proper motion + parallax + microlensing.",
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name:      "Posterior states",
				Structure: "Table of (parameter values [which parameters?], likelihood, prior probability, weight)",
			}},
			{Information: model.Information{
				Name:      "Best-fit quantities and uncertainties from fit",
				Structure: "(parameter values [which parameters?], likelihood, prior probability, weight)",
				Notes:     "Need details here: multi-modal? maxL/MAP/mean/median",
			}},
			{Information: model.Information{
				Name:  "Evidence from fit",
				Notes: "Needed for model comparisons.",
			}},
		},
	}
}

func freeFloatingPlanetCatalog() model.DataRecord {
	return model.DataRecord{
		Information: model.Information{
			Name:                           "Free-floating planet catalog",
			IsOfficialPitPublicDataProduct: true,
			Host:                           "MAST",
			TotalDataSize:                  "18GB",
		},
		Elements: []model.DataRecord{
			{Information: model.Information{
				Name:               "Free floating planet properties",
				Unit:               "Row per FFP event",
				Frequency:          "After each season",
				Structure:          "Columns with median properties [which properties?] with credible intervals",
				TotalNumberOfUnits: "1,200 rows (200 rows per season)",
				Format:             "Parquet",
				UnitDataSize:       "80B",
				TotalDataSize:      "2KB",
			}},
			{Information: model.Information{
				Name:               "Posteriors",
				Unit:               "Per FFP event",
				Frequency:          "After detection of event, and re-run at end of season (at least)",
				Structure:          "(parameter values [which parameters?], likelihood)",
				Format:             "Parquet",
				TotalNumberOfUnits: "1,200 files (200 files per season)",
				UnitDataSize:       "8KB",
				TotalDataSize:      "10GB",
			}},
			{Information: model.Information{
				Name:               "Light curves",
				Unit:               "Per FFP event",
				Frequency:          "After detection of event, and re-run at end of season (at least)",
				Format:             "ASDF",
				TotalNumberOfUnits: "1,200 files (200 files per season)",
				UnitDataSize:       "6.6MB",
				TotalDataSize:      "8GB",
			}},
		},
	}
}
