package seed

// knownWebsites maps ASX tickers to company homepages. The holdings file
// only carries names and ISINs; discovery needs somewhere to start.
var knownWebsites = map[string]string{
	// Banks
	"CBA": "https://www.commbank.com.au",
	"NAB": "https://www.nab.com.au",
	"WBC": "https://www.westpac.com.au",
	"ANZ": "https://www.anz.com.au",
	"BEN": "https://www.bendigoadelaide.com.au",
	"BOQ": "https://www.boq.com.au",
	"MQG": "https://www.macquarie.com",

	// Insurance
	"IAG": "https://www.iag.com.au",
	"QBE": "https://www.qbe.com",
	"SUN": "https://www.suncorp.com.au",
	"MPL": "https://www.medibank.com.au",
	"NIB": "https://www.nib.com.au",

	// Wealth and financial services
	"AMP": "https://www.amp.com.au",
	"MFG": "https://www.magellangroup.com.au",
	"PPT": "https://www.perpetual.com.au",
	"HUB": "https://www.hub24.com.au",
	"NWL": "https://www.netwealth.com.au",
	"CPU": "https://www.computershare.com",

	// Telco and media
	"TLS": "https://www.telstra.com.au",
	"TPG": "https://www.tpgtelecom.com.au",
	"NEC": "https://www.nineforbrands.com.au",

	// Technology
	"WTC": "https://www.wisetechglobal.com",
	"XRO": "https://www.xero.com",
	"NXT": "https://www.nextdc.com",
	"MP1": "https://www.megaport.com",
	"DTL": "https://www.data3.com",
	"REA": "https://www.rea-group.com",
	"SEK": "https://www.seek.com.au",
	"CAR": "https://www.carsales.com.au",

	// Retail and consumer
	"WOW": "https://www.woolworthsgroup.com.au",
	"COL": "https://www.colesgroup.com.au",
	"WES": "https://www.wesfarmers.com.au",
	"JBH": "https://www.jbhifi.com.au",
	"HVN": "https://www.harveynorman.com.au",
	"SUL": "https://www.superretailgroup.com.au",

	// Mining and energy
	"BHP": "https://www.bhp.com",
	"RIO": "https://www.riotinto.com",
	"FMG": "https://www.fmgl.com.au",
	"S32": "https://www.south32.net",
	"WDS": "https://www.woodside.com",
	"STO": "https://www.santos.com",
	"ORG": "https://www.originenergy.com.au",
	"AGL": "https://www.agl.com.au",

	// Healthcare
	"CSL": "https://www.csl.com",
	"COH": "https://www.cochlear.com",
	"RMD": "https://www.resmed.com",
	"SHL": "https://www.sonichealthcare.com",
	"RHC": "https://www.ramsayhealth.com",
	"ANN": "https://www.ansell.com",

	// Property
	"GMG": "https://www.goodmangroup.com",
	"SCG": "https://www.scentregroup.com",
	"GPT": "https://www.gpt.com.au",
	"DXS": "https://www.dexus.com",
	"MGR": "https://www.mirvac.com",
}
