// Package domain models the Storm Prediction Center (SPC) severe report
// database: tornado, damaging wind and hail reports from 1950 onward.
//
// # Data Source
//
// SPC publishes one flat CSV per hazard (e.g. "1950-2019_all_tornadoes.csv",
// "1955-2019_wind.csv", "1955-2019_hail.csv") at
// https://www.spc.noaa.gov/wcm/. Every file shares the same leading columns:
//
//	om,yr,mo,dy,date,time,tz,st,stf,stn,mag,inj,fat,loss,closs,
//	slat,slon,elat,elon,len,wid,ns,sn,sg,f1,f2,f3,f4
//
// Tornado files append "fc" (F-scale modified flag), wind files append "mt"
// (magnitude type: EG, MG, ES, MS). Rows are sorted by year.
//
// # Time
//
// The date and time columns are local. tz=3 is CST (UTC-6), tz=9 is GMT.
// Records carry a single UTC instant; rows written back out use CST.
//
// # Tornado Segments
//
// A tornado crossing state lines is recorded as one row per state, and a
// state's portion may itself be split across rows when more than four
// counties are involved:
//
//	ns  number of states the whole tornado affected
//	sn  state number: 1 for a per-state entry, 0 for a whole-track summary
//	sg  segment number: 1 for the first entry, 2 for continuation,
//	    -9 for county overflow rows
//
// County columns f1..f4 hold county-local FIPS codes; combined with the
// state FIPS (stf) they give a five-digit county code stf*1000+f.
//
// # Track Reconstruction
//
// Segments sharing an event id (om) within a year are one tornado. A
// [Reconstructor] buckets them, checks that every declared state is present,
// merges same-state fragments with [Merge], and yields a [Track] whose
// attributes aggregate across segments:
//
//	mag, wid, loss, closs, fc     maximum
//	len, inj, fat                 first segment (or sum, see [TotalsPolicy])
//	datetime, slat, slon          first segment
//	elat, elon                    last segment
//	cty_fips                      concatenation
//	anything else                 list of per-segment values
//
// Known errors in the source data are patched from [KnownCorrections].
//
// # Searching
//
// [Collection.Search] filters by [Criteria]: each attribute maps to a value
// set ([Is]), a predicate ([Where]) or several predicates ([WhereAll]). Set
// criteria match on any overlap, so Is("OK") matches a track through OK and KS.
package domain
