package universe

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
)

// fallbackSP500 is the last-resort S&P 500 list, grouped by sector.
// It is stale by construction; a run served from it is marked degraded.
var fallbackSP500 = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "META", "NVDA", "TSLA", "NFLX", "ADBE", "AMD", "INTC",
	"QCOM", "AVGO", "MU", "AMAT", "LRCX", "KLAC", "MRVL", "NXPI", "TXN", "ADI", "MPWR", "ON",
	"MCHP", "SWKS", "QRVO", "WOLF", "ENTG", "MTSI", "CRM", "ORCL", "INTU", "NOW", "WDAY", "PANW",
	"SNOW", "DDOG", "NET", "CRWD", "ZS", "OKTA", "FTNT", "TEAM", "HUBS", "VEEV", "DOCU", "ZM",
	"CFLT", "DBX", "BOX", "SMAR", "RNG", "GDDY", "TWLO", "DT", "ESTC", "MDB", "PATH", "BILL",
	"ACN", "IBM", "CSCO", "ANET", "APH", "TEL", "GLW", "JNPR", "NTAP", "HPE", "DELL", "HPQ",
	"SMCI", "STX", "WDC", "PSTG", "FLEX", "JBL", "ARW", "AVT", "V", "MA", "PYPL", "AXP",
	"FIS", "FISV", "GPN", "FLT", "CPAY", "TOST", "LLY", "JNJ", "UNH", "PFE", "ABBV", "MRK",
	"TMO", "ABT", "BMY", "AMGN", "GILD", "CVS", "CI", "HUM", "MCK", "COR", "CAH", "ZTS",
	"ELV", "CNC", "REGN", "VRTX", "BIIB", "MRNA", "ILMN", "ALNY", "SGEN", "INCY", "EXAS", "TECH",
	"IONS", "BMRN", "SRPT", "RARE", "FOLD", "ARWR", "BLUE", "NBIX", "UTHR", "TGTX", "ISRG", "DHR",
	"SYK", "BSX", "MDT", "EW", "HOLX", "ALGN", "DXCM", "PODD", "IDXX", "RMD", "BDX", "BAX",
	"ZBH", "STE", "GEHC", "QDEL", "NVST", "TFX", "A", "TDOC", "HCA", "UHS", "CRL", "IQV",
	"LH", "DGX", "MOH", "HSIC", "PDCO", "ENSG", "DVA", "ACHC", "THC", "AMED", "CHE", "SGRY",
	"CLOV", "JPM", "BAC", "WFC", "C", "USB", "PNC", "TFC", "COF", "KEY", "FITB", "RF",
	"CFG", "HBAN", "MTB", "ZION", "WTFC", "CMA", "SIVB", "FRC", "WAL", "GS", "MS", "SCHW",
	"BLK", "SPGI", "MCO", "CME", "ICE", "NDAQ", "CBOE", "MKTX", "IBKR", "HOOD", "COIN", "VIRT",
	"LPLA", "SF", "RJF", "PIPER", "BGC", "BRK-B", "PGR", "ALL", "TRV", "AIG", "MET", "PRU",
	"AFL", "CINF", "L", "GL", "WRB", "AIZ", "RNR", "AJG", "MMC", "AON", "BRO", "ERIE",
	"HIG", "AMT", "PLD", "EQIX", "PSA", "DLR", "SPG", "O", "WELL", "AVB", "EQR", "VTR",
	"PEAK", "ARE", "MAA", "UDR", "ESS", "CPT", "EXR", "CUBE", "LSI", "HD", "LOW", "TGT",
	"COST", "WMT", "DG", "DLTR", "BBY", "ROST", "TJX", "TSCO", "AZO", "ORLY", "AAP", "AN",
	"KMX", "LAD", "ABG", "GPI", "SAH", "EBAY", "ETSY", "W", "CHWY", "FTCH", "RH", "WSM",
	"PRTS", "CVNA", "MCD", "SBUX", "YUM", "CMG", "DPZ", "QSR", "WEN", "JACK", "PZZA", "BLMN",
	"DIN", "EAT", "TXRH", "CBRL", "CAKE", "DENN", "BJRI", "RUTH", "PLAY", "WING", "NKE", "LULU",
	"GPS", "UAA", "VFC", "CROX", "DECK", "RL", "PVH", "HBI", "GM", "F", "RIVN", "LCID",
	"APTV", "BWA", "LEA", "GT", "ADNT", "BKNG", "MAR", "HLT", "ABNB", "EXPE", "UBER", "LYFT",
	"DASH", "TCOM", "TRIP", "DIS", "CMCSA", "T", "TMUS", "VZ", "CHTR", "SPOT", "RBLX", "EA",
	"TTWO", "ATVI", "ZNGA", "LYV", "WBD", "FOXA", "FOX", "NWSA", "NWS", "NYT", "MSGS", "MSGN",
	"IPG", "OMC", "ROKU", "MTCH", "BMBL", "BA", "RTX", "LMT", "GD", "NOC", "TDG", "HWM",
	"LHX", "TXT", "HII", "AXON", "IRDM", "AIR", "KTOS", "AVAV", "LDOS", "SAIC", "CACI", "HXL",
	"MOG-A", "CAT", "DE", "CMI", "ETN", "EMR", "HON", "ITW", "ROK", "PH", "AME", "DOV",
	"IR", "XYL", "FTV", "GNRC", "WTS", "CR", "AOS", "BLDR", "WSO", "UNP", "UPS", "FDX",
	"NSC", "CSX", "JBHT", "ODFL", "XPO", "CHRW", "EXPD", "R", "LSTR", "ARCB", "SAIA", "WERN",
	"KNX", "HUBG", "SNDR", "YELL", "MATX", "GE", "MMM", "DHI", "LEN", "PHM", "TOL", "NVR",
	"BLD", "OC", "VMC", "MLM", "SUM", "FBIN", "MAS", "CARR", "JCI", "TRMB", "LECO", "AIT",
	"XOM", "CVX", "COP", "EOG", "SLB", "MPC", "VLO", "PSX", "PXD", "OXY", "HAL", "BKR",
	"OKE", "WMB", "KMI", "HES", "DVN", "FANG", "MRO", "APA", "CTRA", "OVV", "EQT", "AR",
	"RRC", "MTDR", "SM", "CHRD", "PR", "NOG", "FTI", "NOV", "CHX", "LBRT", "HP", "RIG",
	"VAL", "WTTR", "PUMP", "NINE", "ENPH", "SEDG", "RUN", "FSLR", "NOVA", "SHLS", "ARRY", "SPWR",
	"BE", "PLUG", "PG", "KO", "PEP", "PM", "MO", "CL", "MDLZ", "GIS", "KHC", "HSY",
	"K", "CPB", "CAG", "SJM", "HRL", "MKC", "TSN", "BF-B", "STZ", "TAP", "SAM", "KDP",
	"MNST", "CELH", "KR", "SYY", "ADM", "BG", "EL", "CLX", "CHD", "KMB", "SWK", "NWL",
	"CASY", "PFGC", "UNFI", "SMPL", "LIN", "APD", "SHW", "ECL", "DD", "DOW", "NEM", "FCX",
	"NUE", "STLD", "ALB", "CE", "FMC", "IFF", "PPG", "RPM", "SEE", "AVY", "IP", "PKG",
	"AMCR", "GPK", "WRK", "SON", "SLGN", "HUN", "SMG", "MOS", "NEE", "DUK", "SO", "D",
	"AEP", "SRE", "EXC", "XEL", "ED", "PEG", "WEC", "ES", "DTE", "ETR", "FE", "PPL",
	"AEE", "CMS", "CNP", "NI", "ATO", "EVRG", "LNT", "PNW", "OGE", "NWE", "AVA", "SJW",
	"MSEX", "AWR", "FR", "REXR",
}

// hardcodedSource serves the embedded list and never fails
type hardcodedSource struct{}

// NewHardcodedSource returns the embedded last-resort source
func NewHardcodedSource() contracts.UniverseSource { return hardcodedSource{} }

func (hardcodedSource) Kind() contracts.SourceKind { return contracts.SourceHardcoded }

func (hardcodedSource) Fetch(context.Context) ([]string, error) {
	out := make([]string, len(fallbackSP500))
	copy(out, fallbackSP500)
	return out, nil
}
