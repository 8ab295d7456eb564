package i18n

var messages = map[string]map[string]string{
	English: {
		"app.title":    "ironshelf",
		"app.subtitle": "Local manager for S3-compatible storage",

		"connect.title":            "Connect to storage",
		"connect.endpoint":         "Endpoint",
		"connect.endpoint.help":    "host:port or https://host",
		"connect.accessKey":        "Access key",
		"connect.secretKey":        "Secret key",
		"connect.region":           "Region (optional)",
		"connect.pathStyle":        "Path-style addressing",
		"connect.submit":           "Connect",
		"connect.recent":           "Recent connections",
		"connect.recent.empty":     "No saved connections",
		"connect.recent.use":       "Use",
		"connect.recent.forget":    "Forget",
		"connect.recent.lastUsed":  "Last used {0}",
		"connect.history.disabled": "Connection history is turned off",
		"connect.secrets.warning":  "Secret keys are stored in plaintext on this machine",

		"nav.buckets":    "Buckets",
		"nav.disconnect": "Disconnect",
		"nav.theme":      "Toggle theme",
		"nav.language":   "فارسی",

		"buckets.title":          "Buckets",
		"buckets.empty":          "No buckets yet",
		"buckets.create":         "Create bucket",
		"buckets.name":           "Bucket name",
		"buckets.name.help":      "3-63 lowercase letters, digits, dots and hyphens",
		"buckets.region":         "Region",
		"buckets.public":         "Public access",
		"buckets.public.help":    "Objects can be read without credentials",
		"buckets.created":        "Created",
		"buckets.usage":          "Size",
		"buckets.open":           "Open",
		"buckets.delete":         "Delete bucket",
		"buckets.delete.confirm": "Delete bucket {0} and every object in it?",
		"buckets.search":         "Search buckets",

		"visibility.private":     "Private",
		"visibility.public-read": "Public",
		"visibility.custom":      "Custom policy",
		"visibility.makePublic":  "Make public",
		"visibility.makePrivate": "Make private",

		"browser.search":         "Search files and folders",
		"browser.empty":          "This folder is empty",
		"browser.truncated":      "Showing the first {0} entries only",
		"browser.name":           "Name",
		"browser.size":           "Size",
		"browser.modified":       "Modified",
		"browser.folder":         "Folder",
		"browser.upload":         "Upload",
		"browser.newFolder":      "New folder",
		"browser.folderName":     "Folder name",
		"browser.download":       "Download",
		"browser.share":          "Share",
		"browser.rename":         "Rename",
		"browser.newName":        "New name",
		"browser.delete":         "Delete",
		"browser.deleteSelected": "Delete selected",
		"browser.delete.confirm": "Delete the selected items?",
		"browser.up":             "Up",

		"share.title":   "Share link",
		"share.expiry":  "Valid for",
		"share.hours":   "{0} hours",
		"share.days":    "{0} days",
		"share.expires": "Expires {0}",
		"share.copy":    "Copy",
		"share.create":  "Create link",

		"bulk.title":   "Result",
		"bulk.summary": "{0} deleted, {1} failed",
		"bulk.deleted": "deleted",
		"bulk.failed":  "failed",
		"bulk.skipped": "kept",

		"common.cancel": "Cancel",
		"common.create": "Create",
		"common.save":   "Save",
		"common.close":  "Close",
		"common.error":  "Something went wrong",
	},
	Persian: {
		"app.title":    "ironshelf",
		"app.subtitle": "مدیریت محلی فضای ذخیره‌سازی سازگار با S3",

		"connect.title":            "اتصال به فضای ذخیره‌سازی",
		"connect.endpoint":         "آدرس سرویس",
		"connect.endpoint.help":    "host:port یا https://host",
		"connect.accessKey":        "کلید دسترسی",
		"connect.secretKey":        "کلید مخفی",
		"connect.region":           "منطقه (اختیاری)",
		"connect.pathStyle":        "آدرس‌دهی مسیری",
		"connect.submit":           "اتصال",
		"connect.recent":           "اتصال‌های اخیر",
		"connect.recent.empty":     "اتصالی ذخیره نشده است",
		"connect.recent.use":       "استفاده",
		"connect.recent.forget":    "فراموش کن",
		"connect.recent.lastUsed":  "آخرین استفاده {0}",
		"connect.history.disabled": "تاریخچه اتصال خاموش است",
		"connect.secrets.warning":  "کلیدهای مخفی به صورت متن ساده روی این دستگاه ذخیره می‌شوند",

		"nav.buckets":    "باکت‌ها",
		"nav.disconnect": "قطع اتصال",
		"nav.theme":      "تغییر پوسته",
		"nav.language":   "English",

		"buckets.title":          "باکت‌ها",
		"buckets.empty":          "هنوز باکتی وجود ندارد",
		"buckets.create":         "ساخت باکت",
		"buckets.name":           "نام باکت",
		"buckets.name.help":      "۳ تا ۶۳ حرف کوچک، عدد، نقطه و خط تیره",
		"buckets.region":         "منطقه",
		"buckets.public":         "دسترسی عمومی",
		"buckets.public.help":    "فایل‌ها بدون احراز هویت قابل خواندن هستند",
		"buckets.created":        "تاریخ ساخت",
		"buckets.usage":          "حجم",
		"buckets.open":           "باز کردن",
		"buckets.delete":         "حذف باکت",
		"buckets.delete.confirm": "باکت {0} و همه فایل‌های آن حذف شود؟",
		"buckets.search":         "جستجوی باکت‌ها",

		"visibility.private":     "خصوصی",
		"visibility.public-read": "عمومی",
		"visibility.custom":      "سیاست سفارشی",
		"visibility.makePublic":  "عمومی کن",
		"visibility.makePrivate": "خصوصی کن",

		"browser.search":         "جستجوی فایل‌ها و پوشه‌ها",
		"browser.empty":          "این پوشه خالی است",
		"browser.truncated":      "فقط {0} مورد اول نمایش داده می‌شود",
		"browser.name":           "نام",
		"browser.size":           "حجم",
		"browser.modified":       "آخرین تغییر",
		"browser.folder":         "پوشه",
		"browser.upload":         "بارگذاری",
		"browser.newFolder":      "پوشه جدید",
		"browser.folderName":     "نام پوشه",
		"browser.download":       "دانلود",
		"browser.share":          "اشتراک",
		"browser.rename":         "تغییر نام",
		"browser.newName":        "نام جدید",
		"browser.delete":         "حذف",
		"browser.deleteSelected": "حذف موارد انتخاب‌شده",
		"browser.delete.confirm": "موارد انتخاب‌شده حذف شوند؟",
		"browser.up":             "بالا",

		"share.title":   "لینک اشتراک",
		"share.expiry":  "مدت اعتبار",
		"share.hours":   "{0} ساعت",
		"share.days":    "{0} روز",
		"share.expires": "انقضا {0}",
		"share.copy":    "کپی",
		"share.create":  "ساخت لینک",

		"bulk.title":   "نتیجه",
		"bulk.summary": "{0} حذف شد، {1} ناموفق",
		"bulk.deleted": "حذف شد",
		"bulk.failed":  "ناموفق",
		"bulk.skipped": "باقی ماند",

		"common.cancel": "انصراف",
		"common.create": "ساخت",
		"common.save":   "ذخیره",
		"common.close":  "بستن",
		"common.error":  "خطایی رخ داد",
	},
}
